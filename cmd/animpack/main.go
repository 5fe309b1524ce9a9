// animpack bundles .animation and .skeleton files into a single resource pack
// the engine can mount next to (or instead of) its asset directory.
//
// Usage:
//
//	# Build a pack from a manifest
//	animpack build --manifest animpack.yml --output build/assets.res
//
//	# Show what a pack contains
//	animpack list build/assets.res
package main

func main() {
	Execute()
}
