package snapdaemon

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/domsnap/domsnap"
	"github.com/domsnap/domsnap/cdphost"
)

// runtimeDir is where PID/socket/log files for every session live,
// mirroring the teacher's os.TempDir()/agent-browser-go convention.
func runtimeDir() string {
	dir := filepath.Join(os.TempDir(), "domsnap")
	os.MkdirAll(dir, 0o755)
	return dir
}

func PIDFile(session string) string {
	return filepath.Join(runtimeDir(), fmt.Sprintf("%s.pid", session))
}

func SocketPath(session string) string {
	return filepath.Join(runtimeDir(), fmt.Sprintf("%s.sock", session))
}

func LogFile(session string) string {
	return filepath.Join(runtimeDir(), fmt.Sprintf("%s.log", session))
}

// IsRunning reports whether a daemon for session is alive: its PID file
// names a live process and its socket file exists.
func IsRunning(session string) bool {
	data, err := os.ReadFile(PIDFile(session))
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	if runtime.GOOS != "windows" {
		if err := process.Signal(syscall.Signal(0)); err != nil {
			os.Remove(PIDFile(session))
			return false
		}
	}
	if _, err := os.Stat(SocketPath(session)); os.IsNotExist(err) {
		os.Remove(PIDFile(session))
		return false
	}
	return true
}

// Daemon holds one cdphost.Session open across many snapshot/search
// requests, so repeated queries against the same page don't pay a fresh
// browser launch each time.
type Daemon struct {
	session string
	log     zerolog.Logger

	mu      sync.Mutex
	browser *cdphost.Session
	doc     *cdphost.Document

	listener    net.Listener
	connections sync.WaitGroup
	shutdown    chan struct{}
	stopOnce    sync.Once
}

// NewDaemon constructs a daemon for session, logging through log.
func NewDaemon(session string, log zerolog.Logger) *Daemon {
	return &Daemon{
		session:  session,
		log:      log,
		shutdown: make(chan struct{}),
	}
}

// Start opens the Unix socket, writes the PID file, and begins accepting
// connections in the background. It returns once the listener is live.
func (d *Daemon) Start() error {
	socketPath := SocketPath(d.session)
	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("snapdaemon: listen on %s: %w", socketPath, err)
	}
	d.listener = listener

	if err := os.WriteFile(PIDFile(d.session), []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		listener.Close()
		return fmt.Errorf("snapdaemon: write pid file: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		d.Stop()
	}()

	go d.acceptLoop()

	d.log.Info().Str("socket", socketPath).Msg("snapdaemon listening")
	return nil
}

// Wait blocks until the daemon has fully stopped.
func (d *Daemon) Wait() {
	<-d.shutdown
}

func (d *Daemon) acceptLoop() {
	for {
		select {
		case <-d.shutdown:
			return
		default:
		}

		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-d.shutdown:
				return
			default:
				continue
			}
		}

		d.connections.Add(1)
		go d.handleConnection(conn)
	}
}

func (d *Daemon) handleConnection(conn net.Conn) {
	defer d.connections.Done()
	defer conn.Close()

	connID := uuid.NewString()
	log := d.log.With().Str("conn", connID).Logger()
	reader := bufio.NewReader(conn)

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				log.Debug().Err(err).Msg("connection read error")
			}
			return
		}

		cmd, err := ParseCommand(line)
		if err != nil {
			d.writeResponse(conn, ErrorResponse("", err.Error()))
			continue
		}

		resp := d.execute(cmd, log)
		d.writeResponse(conn, resp)

		if cmd.GetAction() == "close" {
			time.Sleep(100 * time.Millisecond)
			go d.Stop()
			return
		}
	}
}

func (d *Daemon) writeResponse(conn net.Conn, resp Response) {
	data, err := SerializeResponse(resp)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"id":"","success":false,"error":"serialize response: %s"}`, err.Error()))
	}
	data = append(data, '\n')
	conn.Write(data)
}

func (d *Daemon) execute(cmd Command, log zerolog.Logger) Response {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch c := cmd.(type) {
	case *NavigateCommand:
		return d.handleNavigate(c, log)
	case *SnapshotCommand:
		return d.handleSnapshot(c, log)
	case *SearchCommand:
		return d.handleSearch(c, log)
	case *CloseCommand:
		return SuccessResponse(c.ID, map[string]bool{"closed": true})
	default:
		return ErrorResponse(cmd.GetID(), "unsupported command")
	}
}

func (d *Daemon) ensureBrowser() error {
	if d.browser != nil {
		return nil
	}
	session, err := cdphost.LaunchWithLogger(cdphost.LaunchOptions{Headless: true}, d.log)
	if err != nil {
		return err
	}
	d.browser = session
	return nil
}

func (d *Daemon) handleNavigate(c *NavigateCommand, log zerolog.Logger) Response {
	if err := d.ensureBrowser(); err != nil {
		return ErrorResponse(c.ID, err.Error())
	}
	doc, err := d.browser.Navigate(c.URL)
	if err != nil {
		return ErrorResponse(c.ID, err.Error())
	}
	d.doc = doc
	log.Info().Str("url", c.URL).Msg("navigated")
	return SuccessResponse(c.ID, map[string]string{"url": c.URL})
}

func (d *Daemon) handleSnapshot(c *SnapshotCommand, log zerolog.Logger) Response {
	if d.doc == nil {
		return ErrorResponse(c.ID, "no page loaded: send a navigate command first")
	}

	partial := &domsnap.PartialCollectorOptions{
		MaxTextLength: c.MaxTextLength,
		IncludeHidden: c.IncludeHidden,
	}
	snap := domsnap.CollectWithLogger(d.doc, partial, log)
	text := domsnap.Format(domsnap.BuildText(snap, nil))
	stats := domsnap.GetSnapshotStats(snap)

	return SuccessResponse(c.ID, SnapshotData{Text: text, Stats: stats})
}

func (d *Daemon) handleSearch(c *SearchCommand, log zerolog.Logger) Response {
	if d.doc == nil {
		return ErrorResponse(c.ID, "no page loaded: send a navigate command first")
	}

	snap := domsnap.CollectWithLogger(d.doc, nil, log)
	opts := domsnap.SearchOptions{CaseSensitive: c.CaseSensitive, UseGlob: c.UseGlob}
	result := domsnap.SearchAndFormat(snap, c.Query, c.ContextLevels, opts)
	if result == nil {
		return ErrorResponse(c.ID, "search produced no result")
	}
	return SuccessResponse(c.ID, SearchData{Result: *result})
}

// Stop tears the daemon down exactly once: closes the listener, drains
// in-flight connections, closes the held browser, removes its files, and
// signals Wait.
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() {
		if d.listener != nil {
			d.listener.Close()
		}
		d.connections.Wait()

		d.mu.Lock()
		if d.browser != nil {
			d.browser.Close()
		}
		d.mu.Unlock()

		os.Remove(PIDFile(d.session))
		os.Remove(SocketPath(d.session))

		close(d.shutdown)
	})
}
