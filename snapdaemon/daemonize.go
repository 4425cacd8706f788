package snapdaemon

import (
	"fmt"
	"os"

	godaemon "github.com/sevlyar/go-daemon"
	"github.com/rs/zerolog"
)

// Daemonize forks session into a detached background process using
// go-daemon's Reborn, the same mechanism the teacher's handleDaemon uses
// (LogFileName is required here too — without it a headless Chrome
// child's own stdio redirection can misbehave). It returns
// (isChild=true, nil) in the forked child, so the caller knows whether to
// continue running the daemon loop or simply exit.
func Daemonize(session string) (isChild bool, err error) {
	ctx := &godaemon.Context{
		PidFileName: PIDFile(session),
		PidFilePerm: 0o644,
		LogFileName: LogFile(session),
		LogFilePerm: 0o640,
		Umask:       0o027,
		Args:        os.Args,
	}

	child, err := ctx.Reborn()
	if err != nil {
		return false, fmt.Errorf("snapdaemon: daemonize: %w", err)
	}
	if child != nil {
		// Parent process: the child has been started, nothing more to do.
		return false, nil
	}
	return true, nil
}

// RunForeground starts and blocks on a Daemon without forking — used by
// "domsnap daemon run" for debugging under a supervisor, and by the forked
// child of "domsnap daemon start".
func RunForeground(session string, log zerolog.Logger) error {
	d := NewDaemon(session, log)
	if err := d.Start(); err != nil {
		return err
	}
	d.Wait()
	return nil
}
