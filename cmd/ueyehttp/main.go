package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/go-chi/chi"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/theckman/yacspin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	yml "gopkg.in/yaml.v2"

	"github.com/nasa-jpl/idslab/camera"
	"github.com/nasa-jpl/idslab/generichttp"
	gcam "github.com/nasa-jpl/idslab/generichttp/camera"
	"github.com/nasa-jpl/idslab/ids"
	"github.com/nasa-jpl/idslab/ids/ueye"
	"github.com/nasa-jpl/idslab/imgrec"
	"github.com/nasa-jpl/idslab/server/middleware/locker"
	"github.com/nasa-jpl/idslab/telemetry"
	"github.com/nasa-jpl/idslab/util"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "ueye-http.yml"
	k              = koanf.New(".")
)

type recorder struct {
	// Root is the root folder to write to
	Root string `yaml:"Root"`

	// Prefix is the filename prefix to use
	Prefix string `yaml:"Prefix"`

	// Enabled turns recording on at boot, if Root is not empty
	Enabled bool `yaml:"Enabled"`
}

type bootup struct {
	// ExposureTime is in seconds.  Zero leaves the camera's default
	ExposureTime float64 `yaml:"ExposureTime"`

	BinningH int `yaml:"BinningH"`
	BinningV int `yaml:"BinningV"`

	// ColorModes are probed in order; empty uses the deepest RAW mode available
	ColorModes []string `yaml:"ColorModes"`

	// Enabled false puts the camera in standby once configured
	Enabled bool `yaml:"Enabled"`
}

type telem struct {
	// Interval between temperature reports
	Interval time.Duration `yaml:"Interval"`

	// Broker is an MQTT URL such as tcp://localhost:1883.  Empty disables telemetry
	Broker   string `yaml:"Broker"`
	Topic    string `yaml:"Topic"`
	ClientID string `yaml:"ClientID"`
}

type config struct {
	Addr         string        `yaml:"Addr"`
	Root         string        `yaml:"Root"`
	SerialNumber string        `yaml:"SerialNumber"`
	Driver       string        `yaml:"Driver"`
	LogLevel     string        `yaml:"LogLevel"`
	OpenTimeout  time.Duration `yaml:"OpenTimeout"`
	Recorder     recorder      `yaml:"Recorder"`
	Bootup       bootup        `yaml:"Bootup"`
	Telemetry    telem         `yaml:"Telemetry"`
}

func setupconfig() {
	k.Load(structs.Provider(config{
		Addr:         ":8000",
		Root:         "/ueye",
		SerialNumber: ids.AutoSerial,
		Driver:       "mock",
		LogLevel:     "info",
		OpenTimeout:  10 * time.Second,
		Recorder:     recorder{},
		Bootup: bootup{
			ExposureTime: 0.01,
			BinningH:     1,
			BinningV:     1,
			ColorModes:   []string{"RAW16", "RAW12", "RAW10", "RAW8"},
			Enabled:      true,
		},
		Telemetry: telem{
			Interval: 10 * time.Second,
			Topic:    "lab/ueye/temperature",
			ClientID: "ueye-http",
		},
	}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `ueye-http exposes control of IDS uEye cameras over HTTP
This enables a server-client architecture,
and the clients can leverage the excellent HTTP
libraries for any programming language,
instead of custom socket logic.

Usage:
	ueye-http <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `ueye-http is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

When no configuration is provided, the defaults are used.  Keys are not case-sensitive.
The command mkconf generates the configuration file with the default values.

serialNumber 'auto' opens the first camera the driver lists.

Driver selects the camera backend.  Only 'mock', a simulated camera, is built
into this binary.

Bootup.ColorModes are tried in order and the first one the sensor accepts is
used.  If none is accepted the server does not start; the log lists why each
was refused.

The camera is opened with retries for up to OpenTimeout, since a camera that
was just plugged in may not be listed yet.

If Telemetry.Broker is set, the sensor temperature is published to
Telemetry.Topic every Telemetry.Interval as JSON.

POST /lock {"bool": true} makes every route except /lock and /abort return
423 (locked), so that other users of the camera know it is busy.`
	fmt.Println(str)
}

func mkconf() {
	c := config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	err = yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("ueye-http version %v\n", Version)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if lvl.Level() == zap.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = lvl
	return zc.Build()
}

func newDriver(name string) (ueye.Driver, error) {
	switch strings.ToLower(name) {
	case "mock":
		return ueye.NewMock(), nil
	default:
		return nil, fmt.Errorf("driver %q is not built into this binary, use mock", name)
	}
}

// open opens the camera, retrying until timeout
func open(drv ueye.Driver, serial string, timeout time.Duration, lg *zap.Logger) (*ids.Camera, error) {
	spinner, err := yacspin.New(yacspin.Config{
		Frequency:         100 * time.Millisecond,
		CharSet:           yacspin.CharSets[11],
		Suffix:            " ",
		Message:           "opening camera " + serial,
		StopCharacter:     "✓",
		StopMessage:       "camera open",
		StopFailCharacter: "✗",
		StopFailMessage:   "failed to open camera",
	})
	if err != nil {
		return nil, err
	}
	spinner.Start()

	var c *ids.Camera
	op := func() error {
		var err error
		c, err = ids.Open(drv, serial, ids.WithLogger(lg))
		if err != nil {
			lg.Debug("open failed, retrying", zap.Error(err))
		}
		return err
	}
	err = backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     100 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         2 * time.Second,
		MaxElapsedTime:      timeout,
		Clock:               backoff.SystemClock})
	if err != nil {
		spinner.StopFail()
		return nil, err
	}
	spinner.Stop()
	return c, nil
}

// configure applies the bootup settings.  Binning precedes exposure so that
// the exposure is checked against the final range.
func configure(c *ids.Camera, b bootup, lg *zap.Logger) error {
	mode, attempts, err := c.ProbeMode(b.ColorModes)
	for _, a := range attempts {
		lg.Info("color mode probe", zap.String("mode", a.Mode), zap.String("outcome", a.Outcome), zap.String("error", a.Error))
	}
	if err != nil {
		return err
	}
	lg.Info("using color mode", zap.String("mode", mode))

	var errs []error
	if b.BinningH > 0 && b.BinningV > 0 {
		errs = append(errs, c.SetBinning(camera.Binning{H: b.BinningH, V: b.BinningV}))
	}
	if b.ExposureTime > 0 {
		errs = append(errs, c.SetExposureTime(util.SecsToDuration(b.ExposureTime)))
	}
	if err := util.MergeErrors(errs); err != nil {
		return err
	}
	if !b.Enabled {
		return c.Disable()
	}
	return nil
}

func run() {
	cfg := config{}
	k.Unmarshal("", &cfg)
	lg, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Sync()

	drv, err := newDriver(cfg.Driver)
	if err != nil {
		lg.Fatal("no driver", zap.Error(err))
	}
	c, err := open(drv, cfg.SerialNumber, cfg.OpenTimeout, lg)
	if err != nil {
		lg.Fatal("unable to open camera", zap.String("serial", cfg.SerialNumber), zap.Error(err))
	}
	defer c.Close()
	lg.Info("connected to camera", zap.String("model", c.Model()), zap.String("serial", c.SerialNumber()))

	if err = configure(c, cfg.Bootup, lg); err != nil {
		lg.Fatal("bootup configuration failed", zap.Error(err))
	}

	dev := camera.NewSerial(c)
	args := cfg.Recorder
	r := imgrec.New(args.Root, args.Prefix)
	r.SetEnabled(args.Enabled && args.Root != "")
	w := gcam.NewHTTPCamera(dev, r, lg)
	lock := locker.New()
	locker.Inject(w, lock)

	// clean up the submux string
	hndlrS := generichttp.SubMuxSanitize(cfg.Root)
	root := chi.NewRouter()
	mux := chi.NewRouter()
	mux.Use(lock.Check)
	w.RT().Bind(mux)
	root.Mount(hndlrS, mux)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{Addr: cfg.Addr, Handler: root}
	g.Go(func() error {
		lg.Info("now listening for requests", zap.String("addr", cfg.Addr), zap.String("root", hndlrS))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		dev.Abort()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if t := cfg.Telemetry; t.Broker != "" {
		pub, err := telemetry.DialMQTT(t.Broker, t.ClientID, 5*time.Second)
		if err != nil {
			lg.Fatal("unable to connect to telemetry broker", zap.String("broker", t.Broker), zap.Error(err))
		}
		defer pub.Close()
		rep := &telemetry.Reporter{Source: dev, Pub: pub, Topic: t.Topic, Serial: c.SerialNumber(), Interval: t.Interval, Log: lg}
		g.Go(func() error {
			if err := rep.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		lg.Error("server stopped", zap.Error(err))
		return
	}
	lg.Info("server stopped")
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
