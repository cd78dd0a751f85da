package replay

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"tankduel/engine/internal/events"
)

// maxEventLine bounds a single JSONL record.
const maxEventLine = 1 << 20

// StoredFrame is a decoded frame together with the time it was captured.
type StoredFrame struct {
	TerrainFrame
	CapturedAt time.Time
}

// TimelineEntry is either an event or a frame, ordered by simulated time.
type TimelineEntry struct {
	Clock float64
	Event *events.Envelope
	Frame *StoredFrame
}

// Bundle is a replay loaded back from disk.
type Bundle struct {
	Dir      string
	Manifest Manifest
	Header   Header
	Events   []events.Envelope
	Frames   []StoredFrame
}

// Load reads the replay bundle stored in dir.
func Load(dir string) (*Bundle, error) {
	if dir == "" {
		return nil, fmt.Errorf("replay path must be provided")
	}
	bundle := &Bundle{Dir: dir}

	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &bundle.Manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	//1.- The header only exists once the writer closed cleanly.
	header, err := ReadHeader(filepath.Join(dir, headerFile))
	switch {
	case err == nil:
		bundle.Header = header
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	if bundle.Events, err = loadEvents(filepath.Join(dir, bundle.Manifest.EventsPath)); err != nil {
		return nil, err
	}
	if bundle.Frames, err = loadFrames(filepath.Join(dir, bundle.Manifest.FramesPath)); err != nil {
		return nil, err
	}
	return bundle, nil
}

func loadEvents(path string) ([]events.Envelope, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(snappy.NewReader(file))
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventLine)
	var out []events.Envelope
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var env events.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			return nil, fmt.Errorf("decode event %d: %w", len(out)+1, err)
		}
		out = append(out, env)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return out, nil
}

func loadFrames(path string) ([]StoredFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader, err := zstd.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var out []StoredFrame
	header := make([]byte, frameRecordHeader)
	for {
		//1.- A clean end of stream lands exactly on a record boundary.
		if _, err := io.ReadFull(reader, header); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("read frame header: %w", err)
		}
		clock := math.Float64frombits(binary.LittleEndian.Uint64(header[8:16]))
		captured := time.Unix(0, int64(binary.LittleEndian.Uint64(header[16:24]))).UTC()
		payload := make([]byte, binary.LittleEndian.Uint32(header[24:28]))
		if _, err := io.ReadFull(reader, payload); err != nil {
			return nil, fmt.Errorf("read frame payload: %w", err)
		}
		frame, err := DecodeTerrainFrame(payload)
		if err != nil {
			return nil, err
		}
		frame.Tick = binary.LittleEndian.Uint64(header[0:8])
		frame.Clock = clock
		out = append(out, StoredFrame{TerrainFrame: frame, CapturedAt: captured})
	}
}

// Timeline merges events and frames by simulated clock. At equal clocks frames come first.
func (b *Bundle) Timeline() []TimelineEntry {
	if b == nil {
		return nil
	}
	entries := make([]TimelineEntry, 0, len(b.Events)+len(b.Frames))
	for i := range b.Frames {
		entries = append(entries, TimelineEntry{Clock: b.Frames[i].Clock, Frame: &b.Frames[i]})
	}
	for i := range b.Events {
		entries = append(entries, TimelineEntry{Clock: b.Events[i].Clock, Event: &b.Events[i]})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Clock < entries[j].Clock })
	return entries
}

// Replay walks the timeline in order, stopping at the first error.
func (b *Bundle) Replay(apply func(TimelineEntry) error) error {
	if b == nil {
		return fmt.Errorf("bundle not loaded")
	}
	if apply == nil {
		return fmt.Errorf("replay callback must be provided")
	}
	for _, entry := range b.Timeline() {
		if err := apply(entry); err != nil {
			return err
		}
	}
	return nil
}
