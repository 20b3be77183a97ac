package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/taskpoolio/taskpool/pkg/config"
	"github.com/taskpoolio/taskpool/pkg/observability/prometheus"
	"github.com/taskpoolio/taskpool/pkg/observability/tracing"
	"github.com/taskpoolio/taskpool/pkg/pool"
)

// Config describes one loadtest run
type Config struct {
	Pool struct {
		Name    string `yaml:"name"`
		Threads int    `yaml:"threads"`
	} `yaml:"pool"`
	Load struct {
		Groups         int   `yaml:"groups"`
		TasksPerGroup  int   `yaml:"tasks_per_group"`
		TaskDurationMS int   `yaml:"task_duration_ms"`
		ResizeBetween  []int `yaml:"resize_between"` // worker counts applied between rounds
	} `yaml:"load"`
	Observability struct {
		EnableTracing bool   `yaml:"enable_tracing"`
		HTTPAddr      string `yaml:"http_addr"` // serves /metrics, /stats, /health; empty disables
	} `yaml:"observability"`
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	configPath := flag.String("config", "config.yaml", "path to loadtest config")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Observability.EnableTracing {
		shutdown, err := tracing.Init(os.Stderr)
		if err != nil {
			log.Fatalf("Failed to init tracing: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Printf("Tracing shutdown: %v", err)
			}
		}()
	}

	p := pool.New(pool.Config{
		Name:     cfg.Pool.Name,
		Threads:  cfg.Pool.Threads,
		Observer: prometheus.NewPoolObserver(nil),
	})
	defer p.Close()

	if cfg.Observability.HTTPAddr != "" {
		go serveHTTP(cfg.Observability.HTTPAddr, p)
	}

	runLoad(cfg, p)

	stats := p.Stats()
	log.Printf("Done: completed=%d failed=%d inline=%d workers=%d",
		stats.CompletedTasks, stats.FailedTasks, stats.InlineTasks, stats.Workers)
}

func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Pool.Name = "loadtest"
	cfg.Pool.Threads = 4
	cfg.Load.Groups = 4
	cfg.Load.TasksPerGroup = 1000

	if err := config.LoadWithEnv(path, "TASKPOOL", cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg,
		config.RequiredFields("Pool.Name"),
		config.NonNegativeFields("Pool.Threads", "Load.Groups", "Load.TasksPerGroup", "Load.TaskDurationMS"),
	); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runLoad(cfg *Config, p *pool.ThreadPool) {
	taskDuration := time.Duration(cfg.Load.TaskDurationMS) * time.Millisecond

	var executed int64
	work := func(ctx context.Context) error {
		if taskDuration > 0 {
			time.Sleep(taskDuration)
		}
		atomic.AddInt64(&executed, 1)
		return nil
	}

	for round := 0; round < cfg.Load.Groups; round++ {
		if round > 0 && len(cfg.Load.ResizeBetween) > 0 {
			n := cfg.Load.ResizeBetween[(round-1)%len(cfg.Load.ResizeBetween)]
			if err := p.SetNumThreads(n); err != nil {
				log.Fatalf("Resize to %d failed: %v", n, err)
			}
			log.Printf("Round %d: resized pool to %d workers", round, n)
		}

		g := pool.NewTaskGroup()
		start := time.Now()

		for i := 0; i < cfg.Load.TasksPerGroup; i++ {
			task := pool.NewNamedTask(g, "loadtest-work", work)
			if cfg.Observability.EnableTracing {
				task = tracing.WrapTask(task, "loadtest-work")
			}
			if err := p.AddTask(task); err != nil {
				log.Fatalf("AddTask failed: %v", err)
			}
		}
		g.Wait()

		elapsed := time.Since(start)
		log.Printf("Round %d: group %s drained %d tasks in %v (%.0f tasks/s)",
			round, g.ID(), cfg.Load.TasksPerGroup, elapsed,
			float64(cfg.Load.TasksPerGroup)/elapsed.Seconds())
	}

	log.Printf("Executed %d tasks total", atomic.LoadInt64(&executed))
}

func serveHTTP(addr string, p *pool.ThreadPool) {
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(prometheus.Handler())

	handler := func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/health":
			ctx.SetContentType("application/json")
			json.NewEncoder(ctx).Encode(map[string]interface{}{"status": "ok"})
		case "/stats":
			ctx.SetContentType("application/json")
			json.NewEncoder(ctx).Encode(p.Stats())
		case "/metrics":
			metricsHandler(ctx)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			ctx.SetContentType("application/json")
			json.NewEncoder(ctx).Encode(map[string]interface{}{"error": "not found"})
		}
	}

	server := &fasthttp.Server{
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	fmt.Printf("Serving metrics on %s\n", addr)
	if err := server.ListenAndServe(addr); err != nil {
		log.Printf("HTTP server: %v", err)
	}
}
