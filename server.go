package main

import (
	"bufio"
	"errors"
	"net"
	"strings"

	log "github.com/sirupsen/logrus"

	"reader.raspi/reader_r/buttonmap"
)

// server reads newline terminated mode names from each client and hands the
// parsed mode to the main loop. Unknown names are answered with an error
// line and otherwise ignored.
func server(ln net.Listener, ch chan<- buttonmap.AppMode) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.WithError(err).Warn("control accept")
			continue
		}
		go serve(conn, ch)
	}
}

func serve(conn net.Conn, ch chan<- buttonmap.AppMode) {
	defer conn.Close()
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		mode, err := buttonmap.ParseAppMode(line)
		if err != nil {
			log.WithField("line", line).Warn("control: unknown mode")
			reply(conn, "error: "+err.Error())
			continue
		}
		ch <- mode
		reply(conn, "ok")
	}
	if err := sc.Err(); err != nil {
		log.WithError(err).Debug("control read")
	}
}

func reply(conn net.Conn, msg string) {
	if _, err := conn.Write([]byte(msg + "\n")); err != nil {
		log.WithError(err).Debug("control reply")
	}
}
