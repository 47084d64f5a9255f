// Package imgrec contains an image recorder used to automatically save images to disk.
package imgrec

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nasa-jpl/idslab/generichttp"
)

// ErrDisabled is returned by Record when the recorder is disabled or has no root
var ErrDisabled = errors.New("recorder disabled")

// Recorder records image sequences with incrementing filenames in
// yyyy-mm-dd subfolders of Root.  It is safe for concurrent use.
type Recorder struct {
	mu sync.Mutex

	// counter is the next index to write, or -1 if the folder must be scanned
	counter int

	root    string
	prefix  string
	enabled bool

	// now is swapped in tests
	now func() time.Time
}

// New returns a recorder.  It is enabled if root is not empty.
func New(root, prefix string) *Recorder {
	return &Recorder{root: root, prefix: prefix, enabled: root != "", counter: -1, now: time.Now}
}

// Active returns true if Record will write
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled && r.root != ""
}

// Root returns the root folder
func (r *Recorder) Root() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.root
}

// SetRoot changes the root folder and makes sure today's folder exists in it
func (r *Recorder) SetRoot(root string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.root = root
	r.counter = -1
	if root == "" {
		return nil
	}
	_, err := r.mkDir()
	return err
}

// Prefix returns the filename prefix
func (r *Recorder) Prefix() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prefix
}

// SetPrefix changes the filename prefix.  Numbering restarts after the
// highest existing file with the new prefix.
func (r *Recorder) SetPrefix(prefix string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefix = prefix
	r.counter = -1
	return nil
}

// Enabled returns the enabled flag
func (r *Recorder) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// SetEnabled sets the enabled flag
func (r *Recorder) SetEnabled(b bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = b
	return nil
}

// folder is the subfolder for today
func (r *Recorder) folder() string {
	now := r.now()
	return filepath.Join(r.root, fmt.Sprintf("%04d-%02d-%02d", now.Year(), now.Month(), now.Day()))
}

func (r *Recorder) mkDir() (string, error) {
	fldr := r.folder()
	err := os.MkdirAll(fldr, 0777)
	return fldr, err
}

// Record writes one complete FITS file and returns its path
func (r *Recorder) Record(p []byte) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled || r.root == "" {
		return "", ErrDisabled
	}
	fldr, err := r.mkDir()
	if err != nil {
		return "", err
	}
	if r.counter < 0 {
		r.counter = r.scan(fldr)
	}
	for {
		fn := filepath.Join(fldr, fmt.Sprintf("%s%06d.fits", r.prefix, r.counter))
		r.counter++
		f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		_, err = f.Write(p)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return fn, err
	}
}

// scan returns one past the highest index in fldr for the current prefix
func (r *Recorder) scan(fldr string) int {
	entries, err := os.ReadDir(fldr)
	if err != nil {
		return 0
	}
	count := -1
	for _, e := range entries {
		// skip directories, non-fits, and wrong prefix
		if e.IsDir() {
			continue
		}
		fn := e.Name()
		if !strings.HasSuffix(fn, ".fits") || !strings.HasPrefix(fn, r.prefix) {
			continue
		}
		bit := strings.TrimSuffix(strings.TrimPrefix(fn, r.prefix), ".fits")
		n, err := strconv.Atoi(bit)
		if err != nil {
			continue
		}
		if n > count {
			count = n
		}
	}
	return count + 1
}

// Inject adds GET and POST routes for /autowrite/root, /autowrite/prefix
// and /autowrite/enabled to the HTTPer which manipulate the recorder
func (r *Recorder) Inject(other generichttp.HTTPer) {
	rt := other.RT()
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/autowrite/root"}] = generichttp.SetString(r.SetRoot)
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/autowrite/root"}] = generichttp.GetString(func() (string, error) { return r.Root(), nil })
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/autowrite/prefix"}] = generichttp.SetString(r.SetPrefix)
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/autowrite/prefix"}] = generichttp.GetString(func() (string, error) { return r.Prefix(), nil })
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/autowrite/enabled"}] = generichttp.SetBool(r.SetEnabled)
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/autowrite/enabled"}] = generichttp.GetBool(func() (bool, error) { return r.Enabled(), nil })
}
