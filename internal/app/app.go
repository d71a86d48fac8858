package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Bajtii/Object-detection/internal/classes"
	"github.com/Bajtii/Object-detection/internal/config"
	"github.com/Bajtii/Object-detection/internal/logger"
	"github.com/Bajtii/Object-detection/internal/routes"
	"github.com/Bajtii/Object-detection/internal/service/ai"
	"github.com/Bajtii/Object-detection/internal/service/camera"
	"github.com/Bajtii/Object-detection/internal/service/emitter"
	"github.com/Bajtii/Object-detection/internal/service/notify"
	"github.com/Bajtii/Object-detection/internal/service/pipeline"
	"github.com/Bajtii/Object-detection/internal/service/websocket"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	instanceID string
	started    time.Time

	detectorService *ai.DetectorService
	sourceService   *camera.SourceService
	notifierService *notify.NotifierService
	hubService      *websocket.HubService
	mqttEmitter     *emitter.MQTTEmitter
	loop            *pipeline.Loop
}

// NewApp wires every component from cfg. Missing model files or an
// unloadable network are startup errors.
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	if err := cfg.CheckModelFiles(); err != nil {
		return nil, err
	}

	names, err := classes.Load(cfg.ClassesFile)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:     cfg,
		logger:     log,
		instanceID: uuid.NewString(),
		started:    time.Now(),
	}
	log = log.With("instance", a.instanceID)

	a.detectorService, err = ai.NewDetectorService(cfg, log.With("component", "detector"))
	if err != nil {
		return nil, err
	}
	a.sourceService = camera.NewSourceService(cfg, log.With("component", "camera"))
	a.hubService = websocket.NewHubService(log.With("component", "hub"))

	a.notifierService, err = notify.NewNotifierService(notify.Options{
		Endpoint:    cfg.NotifyURL,
		Param:       cfg.NotifyParam,
		MinInterval: cfg.MinInterval,
		Timeout:     cfg.NotifyTimeout,
		Logger:      log.With("component", "notifier"),
		Listeners:   []notify.Listener{a.hubService},
	})
	if err != nil {
		a.detectorService.Close()
		return nil, err
	}

	if cfg.MQTTBroker != "" {
		a.mqttEmitter = emitter.NewMQTTEmitter(cfg.MQTTBroker, cfg.MQTTTopic,
			"object-detection-"+a.instanceID, log.With("component", "mqtt"))
		a.notifierService.AddListener(a.mqttEmitter)
	}

	a.loop = pipeline.NewLoop(pipeline.Options{
		Source:   a.sourceService,
		Detector: a.detectorService,
		Notifier: a.notifierService,
		Names:    names,
		Interest: pipeline.NewClassesOfInterest(cfg.ClassesOfInterest),
		TopK:     cfg.MessageTopK,
		Backoff:  pipeline.NewFetchBackoff(cfg.FetchBackoffMax),
		Logger:   log.With("component", "loop"),
	})

	return a, nil
}

// Run starts the loop, the hub and the monitor server and blocks until ctx
// is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Camera: %s", a.config.CameraURL)
	a.logger.Info("Notify endpoint: %s (param %s, min interval %s)", a.config.NotifyURL, a.config.NotifyParam, a.config.MinInterval)
	a.logger.Info("AI Model: %s", a.config.ModelWeights)

	if a.mqttEmitter != nil {
		if err := a.mqttEmitter.Connect(ctx); err != nil {
			a.logger.Warning("MQTT mirror not connected yet: %v", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.hubService.Run(ctx) })
	g.Go(func() error { return a.loop.Run(ctx) })

	if a.config.MonitorPort > 0 {
		server := &http.Server{
			Addr: fmt.Sprintf(":%d", a.config.MonitorPort),
			Handler: routes.SetupRoutes(routes.Deps{
				InstanceID: a.instanceID,
				Started:    a.started,
				Token:      a.config.MonitorToken,
				State:      a.notifierService,
				Stats:      a.loop,
				Hub:        a.hubService,
				Logger:     a.logger.With("component", "http"),
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			a.logger.Info("Monitor: http://localhost:%d", a.config.MonitorPort)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("monitor server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	stats := a.loop.Stats()
	a.logger.Info("Stopped after %d cycles (%d notified, %d suppressed)", stats.Cycles, stats.Notified, stats.Suppressed)
	return err
}

// Close releases the network, the MQTT connection and the log files.
func (a *App) Close() error {
	var err error
	if a.mqttEmitter != nil {
		published, failed := a.mqttEmitter.Counts()
		a.logger.Info("MQTT mirror: %d published, %d failed", published, failed)
		a.mqttEmitter.Disconnect()
	}
	if a.detectorService != nil {
		err = multierr.Append(err, a.detectorService.Close())
	}
	return multierr.Append(err, a.logger.Close())
}
