package utils

import (
	"encoding/csv"
	"log"
	"os"
	"path/filepath"
	"runtime"
)

var (
	_, b, _, _ = runtime.Caller(0)

	// Root folder of this project
	Root = filepath.Join(filepath.Dir(b), "")
)

// LogDir is LOG_DIR when set, otherwise the log folder next to the sources.
func LogDir() string {
	if dir := os.Getenv("LOG_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(filepath.Dir(Root), "log")
}

func SetLogger(fileName string) error {
	file, err := openLogFile(filepath.Join(LogDir(), fileName+".txt"))
	if err != nil {
		return err
	}
	log.SetOutput(file)
	log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds)

	log.Println("log file created")
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
}

func ExportToCsv(name string, records [][]string) error {
	if err := os.MkdirAll(LogDir(), os.ModePerm); err != nil {
		return err
	}
	file, err := os.Create(filepath.Join(LogDir(), name+".csv"))
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err = writer.WriteAll(records); err != nil {
		return err
	}
	return file.Close()
}
