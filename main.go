package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/lens-forum/app/app"
	"github.com/lens-forum/app/util"
)

func main() {
	versionFlag := flag.Bool("v", false, "Print version information")
	localFlag := flag.Bool("local", false, "Run the TUI in this terminal instead of serving it")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s v%s\n", util.Name, util.GetVersion())
		os.Exit(0)
	}

	conf, err := util.ReadConf()
	if err != nil {
		log.Fatalln(err)
	}

	// Setup logging (journald if enabled, otherwise standard logging)
	util.SetupLogging(conf.Conf.WithJournald)

	log.Printf("%s v%s", util.Name, util.GetVersion())
	log.Println("Configuration: ")
	log.Println(util.PrettyPrint(conf))

	if conf.Conf.WithPprof {
		go func() {
			log.Println("pprof server listening on localhost:6060")
			if err := http.ListenAndServe("localhost:6060", nil); err != nil {
				log.Printf("pprof server error: %v", err)
			}
		}()
	}

	application, err := app.New(conf)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if err := application.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if *localFlag {
		if err := application.RunLocal(); err != nil {
			log.Fatalf("Local session error: %v", err)
		}
		return
	}

	// Start the application (blocks until shutdown signal)
	if err := application.Start(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
