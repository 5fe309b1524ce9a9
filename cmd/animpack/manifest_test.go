package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spaghettifunk/anima-skeletal/engine/assets/loaders"
	"github.com/spaghettifunk/anima-skeletal/engine/core"
	"github.com/spaghettifunk/anima-skeletal/engine/resources"
)

func assetPath(t *testing.T, rel string) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "assets", rel))
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "animpack.yml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleManifest(t *testing.T) string {
	return writeManifest(t, `
skeletons:
  - name: skeletons/arm
    file: `+assetPath(t, "skeletons/arm.skeleton")+`
clips:
  - name: animations/wave
    file: `+assetPath(t, "animations/wave.animation")+`
    skeleton: skeletons/arm
    tags: [idle, greet]
  - name: animations/reach
    file: `+assetPath(t, "animations/reach.animation")+`
    skeleton: skeletons/arm
    tags: [idle]
`)
}

func TestBuildPack(t *testing.T) {
	manifest, err := LoadManifest(sampleManifest(t))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	output := filepath.Join(t.TempDir(), "out", "assets.res")
	summary, err := BuildPack(manifest, output)
	if err != nil {
		t.Fatalf("BuildPack: %v", err)
	}
	if summary.Skeletons != 1 || summary.Clips != 2 || summary.Tags != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if _, err := os.Stat(output + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary pack left behind")
	}

	pack, err := loaders.OpenPack(output)
	if err != nil {
		t.Fatal(err)
	}
	defer pack.Close()

	res, err := pack.Load("animations/wave", resources.ResourceTypeAnimation, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc := res.Data.(*resources.AnimationDocument); doc.Name != "wave" || len(doc.Children) != 3 {
		t.Errorf("wave document = %+v", doc)
	}
	if !pack.Has(resources.ResourceTypeSkeleton, "skeletons/arm") {
		t.Errorf("skeleton missing from pack")
	}

	idle, err := pack.Tagged("idle")
	if err != nil {
		t.Fatal(err)
	}
	if len(idle) != 2 || idle[0] != "animations/wave" || idle[1] != "animations/reach" {
		t.Errorf("idle = %v", idle)
	}

	var out bytes.Buffer
	if err := listPack(&out, pack); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"skeletons (1)", "animations (2)", "  animations/reach", "  greet: [animations/wave]"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("list output missing %q:\n%s", want, out.String())
		}
	}
}

func TestBuildPack_JointMismatchFails(t *testing.T) {
	dir := t.TempDir()
	skeleton := filepath.Join(dir, "pair.skeleton")
	body := "name = \"pair\"\n\n[[joints]]\nname = \"shoulder\"\nparent = -1\n\n[[joints]]\nname = \"elbow\"\nparent = 0\n"
	if err := os.WriteFile(skeleton, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	manifest, err := LoadManifest(writeManifest(t, `
skeletons:
  - name: skeletons/pair
    file: `+skeleton+`
clips:
  - name: animations/wave
    file: `+assetPath(t, "animations/wave.animation")+`
    skeleton: skeletons/pair
`))
	if err != nil {
		t.Fatal(err)
	}

	output := filepath.Join(dir, "assets.res")
	if _, err := BuildPack(manifest, output); !errors.Is(err, core.ErrJointCountMismatch) {
		t.Fatalf("err = %v, want ErrJointCountMismatch", err)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("pack written despite failure")
	}
}

func TestLoadManifest_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":            "clips: []\n",
		"missing file":     "clips:\n  - name: a\n",
		"duplicate clip":   "clips:\n  - {name: a, file: a.animation}\n  - {name: a, file: b.animation}\n",
		"unknown skeleton": "clips:\n  - {name: a, file: a.animation, skeleton: nope}\n",
		"not yaml":         "clips: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadManifest(writeManifest(t, body)); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestManifest_RelativePaths(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(assetPath(t, "animations/wave.animation"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "wave.animation"), data, 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "animpack.yml")
	if err := os.WriteFile(path, []byte("clips:\n  - {name: animations/wave, file: wave.animation}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := BuildPack(manifest, filepath.Join(dir, "assets.res")); err != nil {
		t.Fatalf("BuildPack: %v", err)
	}
}

func TestBuildCommand(t *testing.T) {
	output := filepath.Join(t.TempDir(), "assets.res")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"build", "--manifest", sampleManifest(t), "--output", output})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out.String(), "1 skeletons, 2 clips, 2 tags") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	rootCmd.SetArgs([]string{"list", output})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "animations/wave") {
		t.Errorf("list output = %q", out.String())
	}
}
