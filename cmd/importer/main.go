package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vbauerster/mpb"
	"github.com/vbauerster/mpb/cwriter"
	"github.com/vbauerster/mpb/decor"

	"local-library/configs"
	"local-library/internal/db"
	"local-library/internal/importer"
	"local-library/internal/store"
	"local-library/internal/utils"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
	flag.PrintDefaults()
}

func exit(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", msg, err.Error())
	} else {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(1)
}

func main() {
	file := flag.String("file", "catalog.json", "catalog file to import")
	flag.Usage = usage
	flag.Parse()

	cfg, err := configs.LoadConfig()
	if err != nil {
		exit("invalid configuration", err)
	}
	if cfg.StoreBackend != configs.BackendMongo {
		exit("the importer writes to MongoDB only, set STORE_BACKEND=mongo", nil)
	}

	summary, err := run(context.Background(), *file, mongoOpener(cfg), progressBar(os.Stdout, *file))
	slog.Info(summary.String())
	if err != nil {
		exit("import stopped", err)
	}
}

// opener connects the stores and returns the func that releases them.
type opener func(ctx context.Context) (store.Stores, func() error, error)

// progress starts a display for total records and returns its step and stop funcs.
type progress func(total int) (step func(), stop func())

func mongoOpener(cfg configs.Config) opener {
	return func(ctx context.Context) (store.Stores, func() error, error) {
		client, err := db.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return store.Stores{}, nil, fmt.Errorf("unable to connect to MongoDB: %w", err)
		}
		closeFn := func() error { return db.Disconnect(context.Background(), client) }

		database := client.Database(cfg.DBName)
		if err := db.EnsureIndexes(ctx, database); err != nil {
			if cerr := closeFn(); cerr != nil {
				slog.Error("mongo disconnect failed", slog.String("error", cerr.Error()))
			}
			return store.Stores{}, nil, err
		}
		return store.NewMongoStores(database, cfg.StoreTimeout), closeFn, nil
	}
}

func progressBar(w io.Writer, file string) progress {
	return func(total int) (func(), func()) {
		p := mpb.New(mpb.Output(cwriter.New(w)))
		name := fmt.Sprintf("importing: %s", file)
		bar := p.AddBar(int64(total),
			mpb.PrependDecorators(decor.StaticName(name, len(name), 0)),
			mpb.AppendDecorators(decor.Percentage(5, 0)),
		)

		done := 0
		step := func() {
			done++
			bar.Incr(1)
		}
		stop := func() {
			// fill the bar so Stop does not wait on it
			bar.Incr(total - done)
			p.Stop()
		}
		return step, stop
	}
}

// run imports the catalog at path. The stores are released on every path
// once opened.
func run(ctx context.Context, path string, open opener, show progress) (importer.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return importer.Summary{}, fmt.Errorf("unable to open catalog: %w", err)
	}
	catalog, err := importer.Decode(f)
	f.Close()
	if err != nil {
		return importer.Summary{}, err
	}

	stores, closeFn, err := open(ctx)
	if err != nil {
		return importer.Summary{}, err
	}
	defer func() {
		if err := closeFn(); err != nil {
			slog.Error("mongo disconnect failed", slog.String("error", err.Error()))
		}
	}()

	step, stop := show(catalog.Size())
	defer stop()

	im := importer.New(stores, utils.NewAuditLogger(stores.AuditLogs))
	im.Progress = step
	return im.Run(ctx, catalog)
}
