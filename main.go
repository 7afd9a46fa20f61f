package main

import (
	"log"

	"instavibe/cmd"
	"instavibe/fs"
	"instavibe/term"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

func init() {
	// .env may set INSTAVIBE_ENV, which picks the home dir
	_ = godotenv.Load(".env")

	if err := fs.Init(); err != nil {
		term.OutputErrorAndExit("%v", err)
	}

	log.SetOutput(&lumberjack.Logger{
		Filename:   fs.LogPath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	})
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}

func main() {
	cmd.Execute()
}
