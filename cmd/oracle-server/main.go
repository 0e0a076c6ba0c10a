package main

import (
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielpatrickdp/vcalearn/internal/model"
	"github.com/danielpatrickdp/vcalearn/internal/oracle"
	"github.com/danielpatrickdp/vcalearn/internal/remote"
	"github.com/danielpatrickdp/vcalearn/internal/store"
	"google.golang.org/grpc"
)

// #region main

func main() {
	addr := flag.String("addr", envOr("VCALEARN_ORACLE_ADDR", "localhost:50051"), "listen address")
	targetRef := flag.String("target", envOr("VCALEARN_TARGET", "builtin:anbn"), "target definition: builtin:<name> or a YAML/JSON file")
	dbPath := flag.String("db", envOr("VCALEARN_DB", ""), "SQLite database caching answers (optional)")
	flag.Parse()

	def, err := model.Resolve(*targetRef)
	if err != nil {
		log.Fatalf("load target: %v", err)
	}
	target, err := def.Build()
	if err != nil {
		log.Fatalf("build target: %v", err)
	}

	var answers oracle.MembershipOracle = oracle.NewAutomatonOracle(target)
	if *dbPath != "" {
		db, err := store.NewStore(*dbPath)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer db.Close()
		scope, err := def.CacheScope(*targetRef)
		if err != nil {
			log.Fatalf("cache scope: %v", err)
		}
		answers = oracle.NewCachedOracle(answers, db, scope)
	}

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("listen %s: %v", *addr, err)
	}
	srv := grpc.NewServer()
	remote.RegisterMembershipServer(srv, remote.NewServer(answers, target.Alphabet()))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Printf("[REMOTE] shutting down")
		srv.GracefulStop()
	}()

	log.Printf("[REMOTE] serving %s (%s) on %s", def.Name, *targetRef, lis.Addr())
	if err := srv.Serve(lis); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// #endregion main

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
