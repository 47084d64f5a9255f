// Package camera provides a generic HTTP interface to a scientific camera
package camera

import (
	"bytes"
	"encoding/json"
	"image/jpeg"
	"image/png"
	"net/http"
	"time"

	"github.com/astrogo/fitsio"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nasa-jpl/idslab/camera"
	"github.com/nasa-jpl/idslab/generichttp"
	"github.com/nasa-jpl/idslab/imgrec"
	"github.com/nasa-jpl/idslab/util"
)

// HTTPCamera wraps a camera in an HTTP interface
type HTTPCamera struct {
	Cam camera.Device

	// Rec, if not nil, is given a copy of every FITS frame served
	Rec *imgrec.Recorder

	// Log receives recorder failures, which do not fail the request
	Log *zap.Logger

	RouteTable generichttp.RouteTable
}

// NewHTTPCamera returns a new HTTP wrapper around a camera.  rec may be nil.
func NewHTTPCamera(d camera.Device, rec *imgrec.Recorder, log *zap.Logger) HTTPCamera {
	if log == nil {
		log = zap.NewNop()
	}
	w := HTTPCamera{Cam: d, Rec: rec, Log: log, RouteTable: generichttp.RouteTable{}}
	rt := w.RouteTable
	HTTPPicture(d, rt)
	HTTPEnabler(d, rt)
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/temperature"}] = generichttp.GetFloat(d.GetTemperature)
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/color-mode/probe"}] = ProbeMode(d)
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/abort"}] = generichttp.Action(d.Abort)
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/image"}] = GetFrame(d, rec, log)
	if rec != nil {
		rec.Inject(w)
	}
	return w
}

// RT satisfies generichttp.HTTPer
func (h HTTPCamera) RT() generichttp.RouteTable {
	return h.RouteTable
}

// HTTPPicture injects exposure, binning and geometry routes into a route table for a picture taker
func HTTPPicture(p camera.PictureTaker, table generichttp.RouteTable) {
	table[generichttp.MethodPath{Method: http.MethodGet, Path: "/exposure-time"}] = GetExposureTime(p)
	table[generichttp.MethodPath{Method: http.MethodPost, Path: "/exposure-time"}] = SetExposureTime(p)
	table[generichttp.MethodPath{Method: http.MethodGet, Path: "/exposure-range"}] = GetExposureRange(p)
	table[generichttp.MethodPath{Method: http.MethodGet, Path: "/binning"}] = GetBinning(p)
	table[generichttp.MethodPath{Method: http.MethodPost, Path: "/binning"}] = SetBinning(p)
	table[generichttp.MethodPath{Method: http.MethodGet, Path: "/sensor-shape"}] = GetSensorShape(p)
	table[generichttp.MethodPath{Method: http.MethodGet, Path: "/pixel-depth"}] = generichttp.GetInt(p.GetPixelDepth)
}

// HTTPEnabler injects /enabled into a route table
func HTTPEnabler(e camera.Enabler, table generichttp.RouteTable) {
	table[generichttp.MethodPath{Method: http.MethodGet, Path: "/enabled"}] = generichttp.GetBool(e.GetEnabled)
	table[generichttp.MethodPath{Method: http.MethodPost, Path: "/enabled"}] = generichttp.SetBool(func(b bool) error {
		if b {
			return e.Enable()
		}
		return e.Disable()
	})
}

// parseExposure reads a duration from a string in any format time.ParseDuration
// accepts.  If no unit is given, seconds are assumed.
func parseExposure(texp string) (time.Duration, error) {
	if util.AllElementsNumbers(texp) {
		texp = texp + "s"
	}
	return time.ParseDuration(texp)
}

// SetExposureTime sets the exposure time on a POST request.
// it can be provided either as a query parameter exposureTime, formatted in a
// way that is parseable by golang/time.ParseDuration, or a json payload with
// key f64, holding the exposure time in seconds.
func SetExposureTime(p camera.PictureTaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		texp := r.URL.Query().Get("exposureTime")
		var d time.Duration
		var err error
		if texp == "" {
			f := generichttp.FloatT{}
			err = json.NewDecoder(r.Body).Decode(&f)
			defer r.Body.Close()
			d = util.SecsToDuration(f.F64)
		} else {
			d, err = parseExposure(texp)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = p.SetExposureTime(d)
		if err != nil {
			generichttp.Error(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// GetExposureTime gets the exposure time in seconds on a GET request
func GetExposureTime(p camera.PictureTaker) http.HandlerFunc {
	return generichttp.GetFloat(func() (float64, error) {
		d, err := p.GetExposureTime()
		return d.Seconds(), err
	})
}

// GetExposureRange returns {"min", "max", "inc"} in seconds
func GetExposureRange(p camera.PictureTaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rng, err := p.GetExposureRange()
		if err != nil {
			generichttp.Error(w, err)
			return
		}
		generichttp.ReplyJSON(w, rng)
	}
}

// SetBinning sets the binning from a JSON payload {"h": 2, "v": 2}
func SetBinning(p camera.PictureTaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b := camera.Binning{}
		err := json.NewDecoder(r.Body).Decode(&b)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = p.SetBinning(b)
		if err != nil {
			generichttp.Error(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// GetBinning returns the binning as {"h": 2, "v": 2}
func GetBinning(p camera.PictureTaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := p.GetBinning()
		if err != nil {
			generichttp.Error(w, err)
			return
		}
		generichttp.ReplyJSON(w, b)
	}
}

// GetSensorShape returns {"width", "height"}
func GetSensorShape(p camera.PictureTaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := p.GetSensorShape()
		if err != nil {
			generichttp.Error(w, err)
			return
		}
		generichttp.ReplyJSON(w, s)
	}
}

// ProbeMode tries the color modes in {"modes": [...]} in order and replies
// with the accepted mode and every attempt.  An empty list probes the
// camera's default candidates.
func ProbeMode(m camera.ModeProber) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := struct {
			Modes []string `json:"modes"`
		}{}
		err := json.NewDecoder(r.Body).Decode(&req)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mode, attempts, err := m.ProbeMode(req.Modes)
		if err != nil {
			generichttp.Error(w, err)
			return
		}
		generichttp.ReplyJSON(w, struct {
			Mode     string                `json:"mode"`
			Attempts []camera.ProbeAttempt `json:"attempts"`
		}{mode, attempts})
	}
}

// GetFrame takes a picture and returns it on a GET request.
//
// the image format may be specified in a query parameter fmt, one of jpg,
// png or fits; default to jpg.
//
// the exposure time may be specified as a query parameter in any time-looking
// format, such as "25ms" or "10us".  Strictly speaking, it must be a valid
// input to golang time.ParseDuration.
//
// if no unit is appended, an s (seconds) is added.
//
// if no exposure time is provided, it is not updated and the existing value is used.
//
// FITS frames carry the camera's metadata and a FRAMEID, and are also
// written to the recorder if it is active.
func GetFrame(d camera.Device, rec *imgrec.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		format := q.Get("fmt")
		if format == "" {
			format = "jpg"
		}
		if format != "jpg" && format != "png" && format != "fits" {
			http.Error(w, "fmt must be one of jpg, png, fits", http.StatusBadRequest)
			return
		}
		if texp := q.Get("exposureTime"); texp != "" {
			T, err := parseExposure(texp)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			err = d.SetExposureTime(T)
			if err != nil {
				generichttp.Error(w, err)
				return
			}
		}
		var img *camera.Frame
		var err error
		if ca, ok := d.(camera.ContextAcquirer); ok {
			// a client that hangs up aborts the exposure
			img, err = ca.AcquireContext(r.Context())
		} else {
			img, err = d.Acquire()
		}
		if err != nil {
			generichttp.Error(w, err)
			return
		}

		switch format {
		case "jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			w.WriteHeader(http.StatusOK)
			jpeg.Encode(w, img.Gray8(), nil)
		case "png":
			w.Header().Set("Content-Type", "image/png")
			w.WriteHeader(http.StatusOK)
			png.Encode(w, img.Image())
		case "fits":
			cards := d.CollectHeaderMetadata()
			cards = append(cards, fitsio.Card{Name: "FRAMEID", Value: uuid.New().String(), Comment: "unique frame identifier"})
			// buffer the file so the recorder gets it whole
			buf := &bytes.Buffer{}
			err = WriteFits(buf, cards, img)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if rec != nil && rec.Active() {
				fn, err := rec.Record(buf.Bytes())
				if err != nil {
					log.Error("failed to record frame", zap.Error(err))
				} else {
					log.Debug("recorded frame", zap.String("file", fn))
					w.Header().Set("X-Recorded-As", fn)
				}
			}
			hdr := w.Header()
			hdr.Set("Content-Type", "image/fits")
			hdr.Set("Content-Disposition", "attachment; filename=image.fits")
			w.WriteHeader(http.StatusOK)
			w.Write(buf.Bytes())
		}
	}
}
