package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rainet/communication/client"
	"rainet/communication/server"
	"rainet/engine"
	"rainet/experiments"
	"rainet/gamemaster"
	"rainet/meta"
	"rainet/metrics"
	"rainet/player"
	"rainet/protocol"
)

const usage = `usage:
  rainet server [flags]          run the game server
  rainet replay [flags] <file>   replay a script of "P1|P2 OP ..." lines
  rainet watch [flags]           follow a room from the terminal
  rainet throughput [flags] <file>  replay a script in many parallel matches`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "server":
		err = runServer(os.Args[2:])
	case "replay":
		err = runReplay(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	case "throughput":
		err = runThroughput(os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Msgf("%s failed", os.Args[1])
		os.Exit(1)
	}
}

// setupLogging sends logs to the console, or as JSON to path when set. The
// returned file is nil for the console.
func setupLogging(level zerolog.Level, path string) (*os.File, error) {
	zerolog.SetGlobalLevel(level)
	if path == "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: colorable.NewColorableStderr(), TimeFormat: time.Kitchen})
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "open log file")
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return f, nil
}

func runServer(args []string) error {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	tcp := fs.String("tcp", "", "TCP listen address")
	unix := fs.String("unix", "", "Unix socket path")
	ws := fs.String("ws", "", "websocket listen address, serves /ws")
	mode := fs.String("mode", "", "stream listeners: tcp, unix, both or none")
	records := fs.String("records", "", "directory for match records written on shutdown")
	logLevel := fs.String("log-level", "", "trace, debug, info, warn or error")
	fs.Parse(args)

	cfg := meta.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = meta.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	for flagValue, field := range map[*string]*string{
		tcp: &cfg.TCPAddr, unix: &cfg.UnixPath, ws: &cfg.WSAddr, mode: &cfg.Mode,
		records: &cfg.RecordsDir, logLevel: &cfg.LogLevel,
	} {
		if *flagValue != "" {
			*field = *flagValue
		}
	}
	if err := cfg.Validate(); err != nil {
		return errors.WithMessage(err, "config")
	}

	logFile, err := setupLogging(cfg.Level(), cfg.LogPath)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	collector := metrics.NewCollector()
	srv := server.NewServer(cfg, gamemaster.NewGameMaster(cfg.MaxRooms, collector))
	if err := srv.Start(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	log.Info().Msgf("received %s, shutting down", <-sig)

	closeErr := srv.Close()
	if cfg.RecordsDir != "" {
		if err := writeRecords(cfg.RecordsDir, collector.Records()); err != nil {
			log.Error().Err(err).Msg("match records not written")
		}
	}
	return closeErr
}

func writeRecords(root string, records []metrics.MatchRecord) error {
	if len(records) == 0 {
		return nil
	}
	w, err := metrics.NewWriter(root)
	if err != nil {
		return err
	}
	if err := w.WriteMatchRecords(records); err != nil {
		return err
	}
	if err := w.WriteActionRecords(records); err != nil {
		return err
	}
	log.Info().Msgf("wrote %d match records to %s", len(records), w.Dir())
	return nil
}

func runReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	p1 := fs.String("p1", "player1", "name of the first player")
	p2 := fs.String("p2", "player2", "name of the second player")
	lenient := fs.Bool("lenient", false, "skip rejected actions instead of stopping")
	records := fs.String("records", "", "directory for the match record")
	logLevel := fs.String("log-level", "info", "trace, debug, info, warn or error")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("replay needs exactly one script file")
	}

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		return errors.Wrap(err, "log-level")
	}
	if _, err := setupLogging(level, ""); err != nil {
		return err
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return errors.Wrap(err, "open script")
	}
	defer f.Close()

	e, err := engine.NewLocalEngine(fs.Arg(0), [2]string{*p1, *p2}, f, nil)
	if err != nil {
		return err
	}
	e.Lenient = *lenient
	record, runErr := e.Run()

	final := e.Match.Snapshot()
	fmt.Print(player.View{State: final.State}.Render(final.Names))
	fmt.Printf("%d actions, final hash %x\n", record.TotalActions, uint64(final.Hash))
	if *records != "" {
		if err := writeRecords(*records, []metrics.MatchRecord{record}); err != nil {
			return err
		}
	}
	return runErr
}

func runThroughput(args []string) error {
	fs := flag.NewFlagSet("throughput", flag.ExitOnError)
	games := fs.Int("games", 100, "number of matches to play")
	goroutines := fs.Int("goroutines", 8, "number of matches played at once")
	records := fs.String("records", "", "directory for the match records")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("throughput needs exactly one script file")
	}

	if _, err := setupLogging(zerolog.InfoLevel, ""); err != nil {
		return err
	}
	script, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return errors.Wrap(err, "read script")
	}

	// quiet the per-step engine logs
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	result, runErr := experiments.RunThroughput(string(script), *games, *goroutines)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	fmt.Printf("%d games, %d actions in %s on %d goroutines: %.0f actions/s\n",
		result.Games, result.Actions, result.Elapsed, result.Goroutines, result.ActionsPerSecond())
	if *records != "" {
		if err := writeRecords(*records, result.Records); err != nil {
			return err
		}
	}
	return runErr
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	addr := fs.String("addr", "tcp://127.0.0.1:2321", "server address: tcp://host:port, unix:///path or ws://host:port/ws")
	name := fs.String("name", "watcher", "name announced to the server")
	id := fs.String("id", "", "client id, reuse one to take a seat back")
	room := fs.String("room", "", "room id to follow; lists the rooms when empty")
	join := fs.Bool("join", false, "take a seat instead of spectating")
	fs.Parse(args)

	if _, err := setupLogging(zerolog.WarnLevel, ""); err != nil {
		return err
	}

	c, err := dial(*addr, *name, *id)
	if err != nil {
		return err
	}
	defer c.Close()

	p := player.NewPlayer(*name)
	joined := false
	for ev := range c.Events() {
		p.Handle(ev)
		switch ev.Type {
		case protocol.RoomsEvent:
			if *room == "" {
				for _, r := range p.Rooms {
					fmt.Printf("%s  %-20s players %d spectators %d\n", r.ID, r.Name, r.Players, r.Spectators)
				}
				return nil
			}
			if !joined {
				joined = true
				if *join {
					err = c.Join(*room)
				} else {
					err = c.Spectate(*room)
				}
				if err != nil {
					return err
				}
			}
		case protocol.RoleEvent:
			fmt.Printf("you are %s\n", ev.Role)
		case protocol.ErrorEvent:
			if p.Role == protocol.RoleLobby {
				return errors.Errorf("server refused: %s", ev.Code)
			}
			fmt.Printf("error: %s\n", ev.Code)
		case protocol.StateEvent:
			fmt.Print("\n" + p.View.Render(p.Names))
		}
	}
	return c.Err()
}

func dial(addr, name, clientID string) (*client.Client, error) {
	switch {
	case strings.HasPrefix(addr, "ws://"), strings.HasPrefix(addr, "wss://"):
		return client.DialWebSocket(addr, name, clientID)
	case strings.HasPrefix(addr, "unix://"):
		return client.Dial("unix", strings.TrimPrefix(addr, "unix://"), name, clientID)
	case strings.HasPrefix(addr, "tcp://"):
		return client.Dial("tcp", strings.TrimPrefix(addr, "tcp://"), name, clientID)
	}
	return nil, errors.Errorf("unsupported address %q", addr)
}
