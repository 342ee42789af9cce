package images

import (
	"fmt"
	"io/fs"
	"path"

	"github.com/spf13/afero"

	"github.com/lieblingsgerichte/rezepte/internal/domain"
	"github.com/lieblingsgerichte/rezepte/internal/errors"
)

// assetExtensions are tried in order when an image name has no match as given.
var assetExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// Assets resolves catalogue image names against a directory of photos.
type Assets struct {
	fs afero.Fs
}

// NewAssets creates an asset resolver over fsys. Names are resolved
// relative to its root.
func NewAssets(fsys afero.Fs) *Assets {
	return &Assets{fs: fsys}
}

// NewAssetsDir creates an asset resolver rooted at dir on the OS filesystem.
func NewAssetsDir(dir string) *Assets {
	return NewAssets(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// Resolve returns the path of the file an image name refers to: the name as
// given, then the name with each known extension.
func (a *Assets) Resolve(name string) (string, error) {
	if name == "" {
		return "", errors.Validation("image name is empty")
	}

	candidates := make([]string, 0, len(assetExtensions)+1)
	candidates = append(candidates, name)
	for _, ext := range assetExtensions {
		candidates = append(candidates, name+ext)
	}

	for _, p := range candidates {
		p = path.Clean(p)
		if !fs.ValidPath(p) {
			return "", errors.Validationf("image name %q is not a relative path", name)
		}
		info, err := a.fs.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", errors.Wrapf(err, errors.CodeInternal, "stat %s", p)
		}
	}
	return "", errors.NotFoundf("image %q not found", name)
}

// Load resolves an image name and normalises the file it refers to.
func (a *Assets) Load(name string) (*domain.Image, error) {
	p, err := a.Resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(a.fs, p)
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("read %s: %w", p, err), errors.CodeInternal, "load image")
	}
	return Normalize(data)
}
