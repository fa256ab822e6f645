package keywords

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"reelsmith/internal/services"
)

func readJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "keywords", "read", path, err)
		}
		return services.Wrap(services.ErrTransient, "keywords", "read", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return services.Wrap(services.ErrValidation, "keywords", "decode", path, err)
	}
	return nil
}
