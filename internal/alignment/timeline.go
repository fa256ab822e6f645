package alignment

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"reelsmith/internal/fileutil"
	"reelsmith/internal/services"
)

// WriteTimeline writes segments as indented JSON.
func WriteTimeline(path string, segments []Segment) error {
	if segments == nil {
		segments = []Segment{}
	}
	if err := fileutil.WriteJSONAtomic(path, segments); err != nil {
		return services.Wrap(services.ErrTransient, "alignment", "write timeline", path, err)
	}
	return nil
}

// ReadTimeline loads a timeline written by WriteTimeline.
func ReadTimeline(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "alignment", "read timeline", path, err)
		}
		return nil, services.Wrap(services.ErrTransient, "alignment", "read timeline", path, err)
	}
	var segments []Segment
	if err := json.Unmarshal(data, &segments); err != nil {
		return nil, services.Wrap(services.ErrValidation, "alignment", "decode timeline", path, err)
	}
	for i, seg := range segments {
		if seg.End < seg.Start {
			return nil, services.Wrap(services.ErrValidation, "alignment", "validate timeline", path,
				fmt.Errorf("segment %d ends before it starts", i))
		}
	}
	return segments, nil
}
