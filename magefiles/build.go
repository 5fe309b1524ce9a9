//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the testbed binary into bin/.
func (Build) Engine() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/anima", "."), withEnv("CGO_ENABLED=0"), withStream())
	return err
}

// Builds the animpack CLI into bin/.
func (Build) Animpack() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/animpack", "./cmd/animpack"), withStream())
	return err
}

// Packs the sample assets into build/assets.res.
func (Build) Pack() error {
	mg.Deps(Build.Animpack)
	_, err := executeCmd("bin/animpack", withArgs("build", "-m", "animpack.yml", "-o", "build/assets.res"), withStream())
	return err
}

// Runs the unit tests with the race detector.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withEnv("CGO_ENABLED=1"), withStream())
	return err
}
