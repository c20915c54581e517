package checkpoint

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"
	"github.com/grailbio/sigrepeat/overlap"
	"github.com/grailbio/sigrepeat/util"
)

// State is everything a resumed run needs: the running totals and the set of
// samples they cover.  The two are only ever persisted together.
type State struct {
	Totals    overlap.Stats
	Processed *ProcessedSet
}

// NewState returns the empty state of a fresh run.
func NewState() State {
	return State{Processed: NewProcessedSet()}
}

// Store persists State.
type Store interface {
	// Load returns the stored state, or an empty state and found == false if
	// nothing has been stored.  A stored state that cannot be read back intact
	// is an error, never "not found".
	Load(ctx context.Context) (s State, found bool, err error)
	// Save replaces the stored state.  Either the new state is stored in full
	// or the old one is left in place.
	Save(ctx context.Context, s State) error
	// Remove deletes the stored state.  Removing an absent state is not an
	// error.
	Remove(ctx context.Context) error
}

const (
	// <versionHeader, version> is stored in the recordio header.
	versionHeader = "sigrepeat-checkpoint"
	version       = "CKPT_V1"
	// fingerprintHeader identifies the run configuration the state belongs to.
	fingerprintHeader = "fingerprint"

	trailerVersion = 1
	// version, five totals, processed count.
	trailerLen = 7 * 8
)

func init() {
	recordiozstd.Init()
}

// FileStore keeps State in a single recordio file: one record per processed
// sample ID, and the totals plus record count in the trailer.  Files are
// written through file.Create, which only makes a file visible under its
// final name once Close succeeds, so a crash mid-write leaves the previous
// checkpoint in place.
type FileStore struct {
	Path string
	// Fingerprint is written into new checkpoints.  When nonempty, Load
	// rejects checkpoints carrying a different one.
	Fingerprint string
}

func encodeTrailer(s State) []byte {
	var buf [trailerLen]byte
	vals := [...]int64{trailerVersion, s.Totals.GT, s.Totals.Computed, s.Totals.Intersection,
		s.Totals.Union, s.Totals.Length, int64(s.Processed.Len())}
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	return buf[:]
}

func decodeTrailer(b []byte) (totals overlap.Stats, n int64, err error) {
	if len(b) != trailerLen {
		return totals, 0, fmt.Errorf("trailer is %d bytes, want %d", len(b), trailerLen)
	}
	var vals [7]int64
	for i := range vals {
		vals[i] = int64(binary.LittleEndian.Uint64(b[i*8:]))
	}
	if vals[0] != trailerVersion {
		return totals, 0, fmt.Errorf("unrecognized trailer version: got %d, want %d", vals[0], trailerVersion)
	}
	totals = overlap.Stats{GT: vals[1], Computed: vals[2], Intersection: vals[3], Union: vals[4], Length: vals[5]}
	return totals, vals[6], nil
}

func marshalState(s State, fingerprint string) ([]byte, error) {
	var buf bytes.Buffer
	w := recordio.NewWriter(&buf, recordio.WriterOpts{
		Transformers: []string{recordiozstd.Name},
	})
	w.AddHeader(versionHeader, version)
	w.AddHeader(fingerprintHeader, fingerprint)
	w.AddHeader(recordio.KeyTrailer, true)
	for _, id := range s.Processed.IDs() {
		w.Append([]byte(id))
	}
	w.SetTrailer(encodeTrailer(s))
	if err := w.Finish(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save implements Store.
func (f *FileStore) Save(ctx context.Context, s State) error {
	data, err := marshalState(s, f.Fingerprint)
	if err != nil {
		return errors.E(err, "checkpoint: encode", f.Path)
	}
	out, err := file.Create(ctx, f.Path)
	if err != nil {
		return errors.E(err, "checkpoint: create", f.Path)
	}
	return commit(ctx, out, data)
}

// commit writes data to out and publishes it.  On a write error out is
// discarded, which leaves the committed file untouched.
func commit(ctx context.Context, out file.File, data []byte) error {
	if _, err := out.Writer(ctx).Write(data); err != nil {
		out.Discard(ctx)
		return errors.E(err, "checkpoint: write", out.Name())
	}
	if err := out.Close(ctx); err != nil {
		return errors.E(err, "checkpoint: commit", out.Name())
	}
	return nil
}

func (f *FileStore) corrupt(format string, args ...interface{}) error {
	return errors.E(errors.Invalid, "checkpoint", f.Path, "is corrupt:", fmt.Sprintf(format, args...))
}

// Load implements Store.
func (f *FileStore) Load(ctx context.Context) (s State, found bool, err error) {
	s = NewState()
	in, err := file.Open(ctx, f.Path)
	if err != nil {
		if util.IsNotExist(err) {
			return s, false, nil
		}
		return s, false, errors.E(err, "checkpoint: open", f.Path)
	}
	defer file.CloseAndReport(ctx, in, &err)

	sc := recordio.NewScanner(in.Reader(ctx), recordio.ScannerOpts{})
	var versionFound bool
	var fingerprint string
	for _, kv := range sc.Header() {
		switch kv.Key {
		case versionHeader:
			v, _ := kv.Value.(string)
			if v != version {
				return s, false, f.corrupt("version %q, want %q", v, version)
			}
			versionFound = true
		case fingerprintHeader:
			fingerprint, _ = kv.Value.(string)
		}
	}
	if e := sc.Err(); e != nil {
		return s, false, f.corrupt("%v", e)
	}
	if !versionFound {
		return s, false, f.corrupt("%s header not found", versionHeader)
	}
	if f.Fingerprint != "" && fingerprint != f.Fingerprint {
		return s, false, errors.E(errors.Invalid, "checkpoint", f.Path,
			fmt.Sprintf("was written by a run with a different configuration (fingerprint %s, want %s); remove it to start over", fingerprint, f.Fingerprint))
	}
	totals, n, e := decodeTrailer(sc.Trailer())
	if e != nil {
		return s, false, f.corrupt("%v", e)
	}
	for sc.Scan() {
		id := string(sc.Get().([]byte))
		if !s.Processed.Mark(id) {
			return s, false, f.corrupt("sample %s recorded twice", id)
		}
	}
	if e := sc.Err(); e != nil {
		return s, false, f.corrupt("%v", e)
	}
	if int64(s.Processed.Len()) != n {
		return s, false, f.corrupt("%d sample records, trailer says %d", s.Processed.Len(), n)
	}
	if e := totals.Validate(); e != nil {
		return s, false, f.corrupt("%v", e)
	}
	s.Totals = totals
	return s, true, nil
}

// Remove implements Store.
func (f *FileStore) Remove(ctx context.Context) error {
	if err := file.Remove(ctx, f.Path); err != nil && !util.IsNotExist(err) {
		return errors.E(err, "checkpoint: remove", f.Path)
	}
	return nil
}
