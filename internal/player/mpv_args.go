package player

import (
	"fmt"
	"strconv"
)

// mpvArgs builds the command line for an idle mpv controlled over socket.
func mpvArgs(opts MPVOptions, out *Output, socket string) []string {
	args := []string{
		"--idle=yes",
		"--input-ipc-server=" + socket,
		"--no-terminal",
		"--keep-open=no",
		"--pause",
		"--force-window=no",
	}
	if opts.Video && out != nil {
		args = append(args, fmt.Sprintf("--geometry=%dx%d", out.Width, out.Height))
		if out.Title != "" {
			args = append(args, "--title="+out.Title)
		}
	} else {
		args = append(args, "--video=no")
	}
	if opts.Volume > 0 {
		args = append(args, "--volume="+strconv.Itoa(min(opts.Volume, 100)))
	}
	return append(args, opts.Args...)
}
