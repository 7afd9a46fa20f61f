package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

var HomeDir string
var HomeInstavibeDir string
var ConfigPath string
var LogPath string
var SnapsDir string

// Init resolves the home paths. It must run after .env is loaded since INSTAVIBE_ENV picks the dir.
func Init() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("couldn't find home dir: %v", err)
	}
	HomeDir = home

	if os.Getenv("INSTAVIBE_ENV") == "development" {
		HomeInstavibeDir = filepath.Join(home, ".instavibe-dev")
	} else {
		HomeInstavibeDir = filepath.Join(home, ".instavibe")
	}

	SnapsDir = filepath.Join(HomeInstavibeDir, "snaps")
	ConfigPath = filepath.Join(HomeInstavibeDir, "config.yml")
	LogPath = filepath.Join(HomeInstavibeDir, "instavibe.log")

	err = os.MkdirAll(SnapsDir, os.ModePerm)
	if err != nil {
		return fmt.Errorf("error creating %s: %v", SnapsDir, err)
	}

	return nil
}
