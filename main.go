package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AdsanTheGreat/org-social-go/cli"
	"github.com/AdsanTheGreat/org-social-go/feed"
	"github.com/AdsanTheGreat/org-social-go/network"
	"github.com/AdsanTheGreat/org-social-go/notifications"
	"github.com/AdsanTheGreat/org-social-go/parser"
	"github.com/AdsanTheGreat/org-social-go/storage"
	"github.com/AdsanTheGreat/org-social-go/util"
)

// stdioSession runs the CLI against the process terminal.
type stdioSession struct{}

func (stdioSession) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioSession) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func main() {
	os.Exit(run())
}

func run() int {
	version := flag.Bool("v", false, "print version and exit")
	confPath := flag.String("conf", util.ConfigFileName, "path to config file")
	publicURL := flag.String("url", "", "public URL your social file is served from")
	offline := flag.Bool("offline", false, "skip fetching followed feeds")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", util.Name, util.GetVersion())
		return 0
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	conf, err := util.ReadConf(*confPath)
	if err != nil {
		log.WithError(err).Error("could not read configuration")
		return 1
	}

	store := &storage.FileStore{Path: conf.Conf.SocialFile, Source: *publicURL}
	doc, warnings, err := store.LoadWithWarnings()
	if err != nil {
		log.WithError(err).Error("could not load social file")
		return 1
	}
	for _, w := range warnings {
		log.WithField("line", w.Line).Warn(w.Error())
	}

	f := feed.New()
	if err := f.Ingest(doc); err != nil {
		log.WithError(err).Warn("duplicate posts in local file")
	}

	if !*offline && len(doc.Profile.Follows()) > 0 {
		fetchFollowed(f, doc, conf, log)
	}

	self := notifications.Target{Source: *publicURL, Nick: doc.Profile.Nick()}
	h := cli.NewHandler(stdioSession{}, store, f, self, conf)
	if err := h.Execute(flag.Args()); err != nil {
		return 1
	}
	return 0
}

// fetchFollowed pulls every followed feed into the aggregate. Failures
// are logged and skipped, an unreachable feed never blocks the rest.
func fetchFollowed(f *feed.Feed, doc *parser.Document, conf *util.AppConfig, log *logrus.Logger) {
	fetcher := network.NewFetcher(network.Config{
		Timeout:        time.Duration(conf.Conf.FetchTimeout) * time.Second,
		Retries:        conf.Conf.FetchRetries,
		MaxConcurrent:  conf.Conf.MaxConcurrent,
		RequestsPerSec: conf.Conf.RequestsPerSec,
	}, log)

	// Each source is bounded on its own by the client timeout and retry
	// cap; a batch-wide deadline would cancel queued fetches that are
	// individually within budget.
	for _, res := range fetcher.FetchFollows(context.Background(), doc.Profile) {
		if res.Err != nil {
			log.WithField("url", res.URL).WithError(res.Err).Warn("skipping unreachable feed")
			continue
		}
		for _, w := range res.Warnings {
			log.WithField("url", res.URL).Warn(w.Error())
		}
		if err := f.Ingest(res.Doc); err != nil {
			log.WithField("url", res.URL).WithError(err).Warn("duplicate posts skipped")
		}
	}
}
