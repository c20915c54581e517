package evaluate

import (
	"context"
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/sigrepeat/encoding/signal"
	"github.com/grailbio/sigrepeat/util"
)

// Sample is one corpus member.
type Sample struct {
	ID         string
	SignalPath string
}

// ListSamples enumerates the signal files directly under dir, sorted by
// sample ID.  Two files mapping to the same ID are an error.
func ListSamples(ctx context.Context, dir string) ([]Sample, error) {
	var samples []Sample
	seen := make(map[string]string)
	lister := file.List(ctx, dir, false)
	for lister.Scan() {
		if lister.IsDir() {
			continue
		}
		path := lister.Path()
		id := signal.SampleID(path)
		if id == "" {
			continue
		}
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("evaluate: sample %s has two signal files: %s and %s", id, prev, path)
		}
		seen[id] = path
		samples = append(samples, Sample{ID: id, SignalPath: path})
	}
	if err := lister.Err(); err != nil {
		return nil, errors.E(err, "list", dir)
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].ID < samples[j].ID })
	return samples, nil
}

// inputSuffixes are tried in order when locating a per-sample input.
var inputSuffixes = []string{".txt", ".txt.gz"}

// findInput returns the path of sample id's file in dir.
func findInput(ctx context.Context, dir, id string) (string, error) {
	for _, suffix := range inputSuffixes {
		path := file.Join(dir, id+suffix)
		_, err := file.Stat(ctx, path)
		if err == nil {
			return path, nil
		}
		if !util.IsNotExist(err) {
			return "", errors.E(err, "stat", path)
		}
	}
	return "", errors.E(errors.NotExist, fmt.Sprintf("no input for sample %s in %s", id, dir))
}

// outputPath is where per-sample output for id goes in dir.
func outputPath(dir, id string) string {
	return file.Join(dir, id+".txt")
}
