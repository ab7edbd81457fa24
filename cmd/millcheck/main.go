// millcheck analyzes STL models for CNC manufacturability problems.
package main

func main() {
	Execute()
}
