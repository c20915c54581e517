// Package diag writes per-sample mask dumps for manually inspecting
// disagreements between computed and ground-truth masks.
package diag

import (
	"bufio"
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/sigrepeat/mask"
)

// Dumper writes one file per sample into Dir.  A nil *Dumper or an empty Dir
// disables dumping.
type Dumper struct {
	Dir string
}

// Path returns the dump file path for a sample.
func (d *Dumper) Path(id string) string {
	return file.Join(d.Dir, id+".txt")
}

// Dump writes <Dir>/<id>.txt holding two lines of 0/1 characters, the ground
// truth and then the computed mask, restricted to w.  Failures are logged and
// otherwise ignored.
func (d *Dumper) Dump(ctx context.Context, id string, gt, computed []bool, w mask.Window) {
	if d == nil || d.Dir == "" {
		return
	}
	if err := d.write(ctx, id, gt, computed, w); err != nil {
		log.Error.Printf("diag: %s: %v", id, err)
	}
}

func (d *Dumper) write(ctx context.Context, id string, gt, computed []bool, w mask.Window) (err error) {
	path := d.Path(id)
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	bw := bufio.NewWriter(out.Writer(ctx))
	line := make([]byte, w.Len()+1)
	for _, m := range [][]bool{gt, computed} {
		for i := w.Start; i < w.End; i++ {
			line[i-w.Start] = '0'
			if m[i] {
				line[i-w.Start] = '1'
			}
		}
		line[len(line)-1] = '\n'
		if _, err = bw.Write(line); err != nil {
			return errors.E(err, "write", path)
		}
	}
	if err = bw.Flush(); err != nil {
		return errors.E(err, "write", path)
	}
	return nil
}
