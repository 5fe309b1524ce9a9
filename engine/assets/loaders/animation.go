package loaders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"unsafe"

	"github.com/spaghettifunk/anima-skeletal/engine/resources"
)

// AnimationLoader reads .animation clip documents from disk.
type AnimationLoader struct{}

func (al *AnimationLoader) Load(path string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := DecodeAnimationDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &resources.Resource{
		Name:     resourceName(params, doc.Name),
		FullPath: path,
		Type:     resources.ResourceTypeAnimation,
		DataSize: uint64(unsafe.Sizeof(*doc)),
		Data:     doc,
	}, nil
}

func (al *AnimationLoader) Unload(res *resources.Resource) error {
	res.Data = nil
	res.DataSize = 0
	return nil
}

// DecodeAnimationDocument parses the JSON body of a clip document. Field
// presence is left to the sequence builder to validate.
func DecodeAnimationDocument(data []byte) (*resources.AnimationDocument, error) {
	doc := &resources.AnimationDocument{}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("failed to parse animation document: %w", err)
	}
	return doc, nil
}

// resourceName picks the "name" param when the caller supplied one.
func resourceName(params interface{}, fallback string) string {
	if p, ok := params.(map[string]string); ok && p["name"] != "" {
		return p["name"]
	}
	return fallback
}
