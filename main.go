package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"PlayBoard/internal/config"
	pbnet "PlayBoard/internal/net"
	"PlayBoard/internal/store"
	"PlayBoard/internal/ui"
)

const reconnectDelay = 2 * time.Second

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "", "path to config.yaml")
	browse := flag.Bool("browse", false, "list PlayBoard hosts on the local network and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("[CONFIG] %v", err)
	}

	if *browse {
		runBrowse(ctx)
		return
	}

	if link := flag.Arg(0); strings.HasPrefix(link, pbnet.Scheme) {
		runViewer(ctx, cfg, link)
		return
	}
	runHost(ctx, cfg)
}

func runBrowse(ctx context.Context) {
	err := pbnet.Browse(ctx, 3*time.Second, func(addr string) {
		fmt.Println(pbnet.Scheme + addr)
	})
	if err != nil {
		log.Fatalf("[VIEWER] %v", err)
	}
}

func runHost(ctx context.Context, cfg *config.Config) {
	log.Println("[HOST] Starting as host")

	st, err := store.Open(ctx, store.Options{
		Dir:           cfg.DataDir,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("[STORE] %v", err)
	}
	defer st.Close()
	lib := store.NewLibrary(st)

	hub := pbnet.NewHub()
	server := pbnet.NewServer(lib, hub)
	go func() {
		if err := server.ListenAndServe(ctx, cfg.Addr()); err != nil {
			log.Printf("[HOST] Server stopped: %v", err)
		}
	}()

	if mdnsServer, err := pbnet.Advertise(cfg.Port); err != nil {
		log.Printf("[HOST] mDNS advertising disabled: %v", err)
	} else {
		defer mdnsServer.Shutdown()
	}

	link := pbnet.ShareLink(pbnet.OutgoingIP(), cfg.Port)
	log.Printf("[HOST] Share link: %s", link)

	app := ui.New(ui.Options{
		Config:    cfg,
		Library:   lib,
		Hub:       hub,
		ShareLink: link,
	})
	go func() {
		<-ctx.Done()
		app.Quit()
	}()
	app.Run(ctx)
}

func runViewer(ctx context.Context, cfg *config.Config, link string) {
	log.Println("[VIEWER] Starting as viewer")

	addr, err := pbnet.ParseLink(link)
	if err != nil {
		log.Fatalf("[VIEWER] %v", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := ui.New(ui.Options{Config: cfg, ReadOnly: true})
	go func() {
		for {
			app.SetStatus("Connecting to " + addr)
			err := pbnet.Follow(ctx, addr, app.ApplyRemote)
			if ctx.Err() != nil {
				app.Quit()
				return
			}
			switch {
			case err == nil, pbnet.IsClosed(err):
				app.SetStatus("Host closed the session")
			case errors.Is(err, context.DeadlineExceeded):
				app.SetStatus("Host not responding")
			default:
				app.SetStatus(fmt.Sprintf("Disconnected: %v", err))
			}
			log.Printf("[VIEWER] %v", err)

			select {
			case <-ctx.Done():
				app.Quit()
				return
			case <-time.After(reconnectDelay):
			}
		}
	}()
	app.Run(ctx)
}
