// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package log provides leveled logging for the scoring worker.
//
// Time/Date are not logged by default because systemd adds them for us; call
// SetLogDateTime(true) when running outside of systemd. Prefixes follow
// https://www.freedesktop.org/software/systemd/man/sd-daemon.html so journald
// can pick up the level without a parser.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

var logDateTime bool

var (
	DebugWriter io.Writer = os.Stderr
	InfoWriter  io.Writer = os.Stderr
	WarnWriter  io.Writer = os.Stderr
	ErrWriter   io.Writer = os.Stderr
)

var (
	DebugPrefix string = "<7>[DEBUG]   "
	InfoPrefix  string = "<6>[INFO]    "
	WarnPrefix  string = "<4>[WARNING] "
	ErrPrefix   string = "<3>[ERROR]   "
)

var (
	DebugLog *log.Logger = log.New(DebugWriter, DebugPrefix, 0)
	InfoLog  *log.Logger = log.New(InfoWriter, InfoPrefix, 0)
	WarnLog  *log.Logger = log.New(WarnWriter, WarnPrefix, log.Lshortfile)
	ErrLog   *log.Logger = log.New(ErrWriter, ErrPrefix, log.Llongfile)

	DebugTimeLog *log.Logger = log.New(DebugWriter, DebugPrefix, log.LstdFlags)
	InfoTimeLog  *log.Logger = log.New(InfoWriter, InfoPrefix, log.LstdFlags)
	WarnTimeLog  *log.Logger = log.New(WarnWriter, WarnPrefix, log.LstdFlags|log.Lshortfile)
	ErrTimeLog   *log.Logger = log.New(ErrWriter, ErrPrefix, log.LstdFlags|log.Llongfile)
)

// SetLogLevel discards writers below lvl. Recognized values (least to most
// verbose): "fatal", "err", "warn", "info", "debug". Unknown values fall
// back to "info".
func SetLogLevel(lvl string) {
	switch lvl {
	case "fatal", "err":
		WarnWriter = io.Discard
		fallthrough
	case "warn":
		InfoWriter = io.Discard
		fallthrough
	case "info":
		DebugWriter = io.Discard
	case "debug":
		// keep everything
	default:
		fmt.Fprintf(os.Stderr, "log: unknown level %q, defaulting to 'info'\n", lvl)
		SetLogLevel("info")
	}
}

func SetLogDateTime(logdate bool) {
	logDateTime = logdate
}

func printStr(v ...interface{}) string { return fmt.Sprint(v...) }

func Debug(v ...interface{}) {
	if DebugWriter == io.Discard {
		return
	}
	if logDateTime {
		DebugTimeLog.Output(2, printStr(v...))
	} else {
		DebugLog.Output(2, printStr(v...))
	}
}

func Info(v ...interface{}) {
	if InfoWriter == io.Discard {
		return
	}
	if logDateTime {
		InfoTimeLog.Output(2, printStr(v...))
	} else {
		InfoLog.Output(2, printStr(v...))
	}
}

func Warn(v ...interface{}) {
	if WarnWriter == io.Discard {
		return
	}
	if logDateTime {
		WarnTimeLog.Output(2, printStr(v...))
	} else {
		WarnLog.Output(2, printStr(v...))
	}
}

func Error(v ...interface{}) {
	if ErrWriter == io.Discard {
		return
	}
	if logDateTime {
		ErrTimeLog.Output(2, printStr(v...))
	} else {
		ErrLog.Output(2, printStr(v...))
	}
}

// Fatal logs at error level and terminates the process.
func Fatal(v ...interface{}) {
	Error(v...)
	os.Exit(1)
}

func printfStr(format string, v ...interface{}) string { return fmt.Sprintf(format, v...) }

func Debugf(format string, v ...interface{}) {
	if DebugWriter == io.Discard {
		return
	}
	if logDateTime {
		DebugTimeLog.Output(2, printfStr(format, v...))
	} else {
		DebugLog.Output(2, printfStr(format, v...))
	}
}

func Infof(format string, v ...interface{}) {
	if InfoWriter == io.Discard {
		return
	}
	if logDateTime {
		InfoTimeLog.Output(2, printfStr(format, v...))
	} else {
		InfoLog.Output(2, printfStr(format, v...))
	}
}

func Warnf(format string, v ...interface{}) {
	if WarnWriter == io.Discard {
		return
	}
	if logDateTime {
		WarnTimeLog.Output(2, printfStr(format, v...))
	} else {
		WarnLog.Output(2, printfStr(format, v...))
	}
}

func Errorf(format string, v ...interface{}) {
	if ErrWriter == io.Discard {
		return
	}
	if logDateTime {
		ErrTimeLog.Output(2, printfStr(format, v...))
	} else {
		ErrLog.Output(2, printfStr(format, v...))
	}
}

// Fatalf logs at error level and terminates the process.
func Fatalf(format string, v ...interface{}) {
	Errorf(format, v...)
	os.Exit(1)
}
