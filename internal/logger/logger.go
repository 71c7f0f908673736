package logger

import (
	"io"
	"log"
	"os"
)

var DebugMode bool

func Init() {
	if os.Getenv("DEBUG") == "true" {
		DebugMode = true
	} else {
		// Discard by default so console output and the TUI stay clean
		log.SetOutput(io.Discard)
	}
}

// SetOutput sets the output destination for the standard logger
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func Debug(format string, v ...interface{}) {
	if DebugMode {
		log.Printf("[DEBUG] "+format, v...)
	}
}

func Info(format string, v ...interface{}) {
	log.Printf("[INFO] "+format, v...)
}

func Warn(format string, v ...interface{}) {
	log.Printf("[WARN] "+format, v...)
}
