package logger

import (
	"log"
	"os"

	"github.com/spf13/viper"
)

var (
	InfoLogger  *log.Logger
	ErrorLogger *log.Logger
	logFile     *os.File
)

// Init initializes the loggers and creates/opens the log file
func Init() error {
	logFilePath := viper.GetString("log_file")
	if logFilePath == "" {
		logFilePath = "./ztf-gateway.log"
	}

	var err error
	logFile, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	InfoLogger = log.New(logFile, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger = log.New(logFile, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	return nil
}

// RotateLog clears the current log file to start fresh
func RotateLog(logFilePath string) error {
	if logFile != nil {
		logFile.Close() // Close the current log file before rotating
	}

	var err error
	logFile, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}

	// Reset the outputs for the loggers to the new log file
	InfoLogger.SetOutput(logFile)
	ErrorLogger.SetOutput(logFile)

	return nil
}

// Cleanup closes the log file when the application is done using it
func Cleanup() {
	if logFile != nil {
		logFile.Close()
	}
}

// Info logs an informational message to the log file
func Info(v ...interface{}) {
	if InfoLogger == nil {
		log.Println(v...)
		return
	}
	InfoLogger.Println(v...)
}

// Error logs an error message to the log file
func Error(v ...interface{}) {
	if ErrorLogger == nil {
		log.Println(v...)
		return
	}
	ErrorLogger.Println(v...)
}
