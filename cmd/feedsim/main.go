// Command feedsim serves synthetic regulator feeds for local development.
// Point the service's attention_url and disposition_url at it:
//
//	feedsim -addr :9095
//	VIGIL_ATTENTION_URL=http://localhost:9095/attention \
//	VIGIL_DISPOSITION_URL=http://localhost:9095/disposition vigil
package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/okian/vigil/internal/feedsim"
)

const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	var (
		addr    = flag.String("addr", ":9095", "listen address")
		seed    = flag.Int64("seed", 0, "random seed; 0 uses the current time")
		history = flag.Int("history", 45, "days of attention history to generate")
		noise   = flag.Bool("noise", true, "include malformed disposition rows")
	)
	flag.Parse()

	opts := []feedsim.GeneratorOption{
		feedsim.WithHistoryDays(*history),
		feedsim.WithNoise(*noise),
	}
	if *seed != 0 {
		opts = append(opts, feedsim.WithSeed(*seed))
	}

	server := feedsim.NewServer(feedsim.NewGenerator(opts...))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.NewRouter(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		os.Stderr.WriteString("feedsim server failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
