// The server command is the main entrypoint for running the aurelia world
// server. It takes care of initializing the database, the static data
// catalog, and the background persistence queue before accepting clients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	aurelia "github.com/aurelia-server/aurelia"
	"github.com/aurelia-server/aurelia/internal/catalog"
	"github.com/aurelia-server/aurelia/internal/data"
	"github.com/aurelia-server/aurelia/internal/debug"
	"github.com/aurelia-server/aurelia/internal/server"
	"github.com/aurelia-server/aurelia/internal/world"
)

var configFlag = flag.String("config", "", "Path to the directory containing the server config file")

func main() {
	flag.Parse()

	if err := aurelia.LoadConfig(*configFlag); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Println("using configuration file:", aurelia.ConfigFileUsed())

	if err := aurelia.InitLogger(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if debug.Enabled() {
		go debug.StartPprofServer()
	}

	db, err := data.Initialize(aurelia.DatabaseURL(), viper.GetBool("debugging.database_logging_enabled"))
	if err != nil {
		aurelia.Log.Error(err.Error())
		os.Exit(1)
	}
	aurelia.Log.Infof("connected to database %s:%d",
		viper.GetString("database.host"), viper.GetInt("database.port"))

	itemCatalog := catalog.New()
	if err := itemCatalog.Preload(db); err != nil {
		aurelia.Log.Error(err.Error())
		os.Exit(1)
	}

	// Cancelled on SIGTERM so that Ctrl-C shuts the server down gracefully.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	queue := data.NewUpdateQueue(db)
	queue.Start(ctx)

	gameWorld := world.New(
		"WORLD",
		db,
		itemCatalog,
		queue,
		&data.BuffPruner{DB: db},
	)

	addr := fmt.Sprintf("%s:%s", viper.GetString("hostname"), viper.GetString("world_server.port"))
	worldServer := server.New(addr, gameWorld)

	var eg errgroup.Group
	eg.Go(func() error {
		return worldServer.Start(ctx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		aurelia.Log.Error(err.Error())
	}

	// Let the persistence queue drain anything the shutdown path enqueued.
	queue.Wait()
	if err := data.Shutdown(db); err != nil {
		aurelia.Log.Error(err.Error())
	}
	fmt.Println("shut down")
}
