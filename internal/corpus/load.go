package corpus

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// readBufferSize keeps the decoder fed on multi-hundred-megabyte dumps.
const readBufferSize = 4 * 1024 * 1024

// record is one element of the top-level corpus array.
type record struct {
	ID            string
	Conversations []Message
}

func (r *record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return fmt.Errorf("%w: record must be an object", ErrMalformedRecord)
	}

	rawID, ok := fields["id"]
	if !ok {
		return fmt.Errorf("%w: missing field \"id\"", ErrMalformedRecord)
	}
	if err := json.Unmarshal(rawID, &r.ID); err != nil || isNull(rawID) {
		return fmt.Errorf("%w: \"id\" must be a string", ErrMalformedRecord)
	}

	rawMsgs, ok := fields["conversations"]
	if !ok {
		return fmt.Errorf("%w: missing field \"conversations\" in %q", ErrMalformedRecord, r.ID)
	}
	if isNull(rawMsgs) {
		return fmt.Errorf("%w: \"conversations\" must be an array in %q", ErrMalformedRecord, r.ID)
	}
	if err := json.Unmarshal(rawMsgs, &r.Conversations); err != nil {
		return fmt.Errorf("record %q: %w", r.ID, classify(err))
	}
	return nil
}

// classify maps decoder errors onto the corpus error taxonomy.
func classify(err error) error {
	if errors.Is(err, ErrMalformedRecord) || errors.Is(err, ErrUnknownRoleAlias) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
}

// Load decodes a corpus JSON array from r, merging fragments as they stream
// in. Any malformed record or unknown role aborts the load; no partial
// result is returned.
func Load(r io.Reader) (*Conversations, error) {
	dec := json.NewDecoder(bufio.NewReaderSize(r, readBufferSize))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read corpus start: %w", classify(err))
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("%w: corpus must be a JSON array", ErrMalformedRecord)
	}

	m := NewMerger()
	for n := 0; dec.More(); n++ {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", n, classify(err))
		}
		m.Add(RawFragment{RawID: rec.ID, Messages: rec.Conversations})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read corpus end: %w", classify(err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after corpus array", ErrMalformedRecord)
	}

	return m.Conversations(), nil
}

// LoadFile opens and loads a corpus file.
func LoadFile(path string) (*Conversations, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrSourceUnavailable, path, err)
	}
	defer f.Close()

	convs, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return convs, nil
}
