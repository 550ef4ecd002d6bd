package main

// TODO: serve uploaded lesson images once a storage backend is chosen.
func main() {
	startWithDig()
}
