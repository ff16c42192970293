// Public domain.

package main

import "github.com/soniakeys/rvfit/internal/rvprog"

func main() { rvprog.Main() }
