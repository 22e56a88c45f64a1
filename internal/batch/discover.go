// Package batch validates a directory tree of label submissions.
//
// A submission is any directory holding a form.json manifest
// ({"beverage_type": "...", "form_data": {...}}) next to its label images.
package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/entity"
)

// ManifestName is the file that marks a directory as a submission.
const ManifestName = "form.json"

type manifest struct {
	BeverageType string          `json:"beverage_type"`
	FormData     json.RawMessage `json:"form_data"`
}

// Submission is one discovered directory. Err is set when the manifest or the
// images could not be loaded; such submissions are reported but not validated.
type Submission struct {
	Name         string
	Dir          string
	BeverageType constants.BeverageType
	Form         entity.FormData
	Images       []entity.LabelImage
	Err          error
}

type DirStats struct {
	Scanned     uint32
	Submissions uint32
	Images      uint32
	Failed      uint32
}

// Discover walks root and loads every submission under it, in lexical order.
// Hidden files and directories are skipped when skipHidden is set.
func Discover(root string, skipHidden bool) ([]Submission, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root directory is required")
	}

	var subs []Submission
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			stats.Failed++
			return nil // continue walking
		}
		stats.Scanned++
		if !d.IsDir() {
			return nil
		}
		if skipHidden && path != root && isHidden(path) {
			return filepath.SkipDir
		}
		if _, err := os.Stat(filepath.Join(path, ManifestName)); err != nil {
			return nil
		}

		sub := loadSubmission(root, path)
		stats.Submissions++
		stats.Images += uint32(len(sub.Images))
		if sub.Err != nil {
			stats.Failed++
		}
		subs = append(subs, sub)
		return nil
	})
	if err != nil {
		return subs, stats, fmt.Errorf("walk: %w", err)
	}
	return subs, stats, nil
}

func loadSubmission(root, dir string) Submission {
	name, err := filepath.Rel(root, dir)
	if err != nil || name == "." {
		name = filepath.Base(dir)
	}
	sub := Submission{Name: filepath.ToSlash(name), Dir: dir}

	raw, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		sub.Err = err
		return sub
	}
	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		sub.Err = common.InvalidInput("%s is not valid JSON: %v", ManifestName, err)
		return sub
	}
	// unknown types are rejected by the processor, like any other request
	sub.BeverageType, _ = constants.ParseBeverageType(m.BeverageType)
	if sub.Form, err = entity.ParseFormData(m.FormData); err != nil {
		sub.Err = err
		return sub
	}
	if sub.Images, err = LoadImages(dir); err != nil {
		sub.Err = err
	}
	return sub
}

// LoadImages reads every png/jpg/jpeg file directly inside dir, sorted by name.
// Empty files are an input error.
func LoadImages(dir string) ([]entity.LabelImage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var images []entity.LabelImage
	for _, e := range entries {
		if e.IsDir() || isHidden(e.Name()) || !constants.IsAllowedImageExt(filepath.Ext(e.Name())) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, common.InvalidInput("image %q is empty", e.Name())
		}
		images = append(images, entity.LabelImage{ID: e.Name(), Data: data})
	}
	return images, nil
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
