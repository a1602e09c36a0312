package testutil

import (
	"embed"
	"fmt"
	"io/fs"
)

// TestdataFS embeds the fixture documents used by benchmarks.
//
//go:embed testdata
var TestdataFS embed.FS

// ReadTestData returns the contents of the named embedded fixture.
func ReadTestData(name string) ([]byte, error) {
	data, err := fs.ReadFile(TestdataFS, "testdata/"+name)
	if err != nil {
		return nil, fmt.Errorf("read test data %q: %w", name, err)
	}
	return data, nil
}
