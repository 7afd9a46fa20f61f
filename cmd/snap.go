package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"instavibe/camera"
	"instavibe/fs"
	"instavibe/term"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var snapDevice string
var snapDevicePath string
var snapOut string
var snapQuality float64

var snapCmd = &cobra.Command{
	Use:   "snap",
	Short: "Capture a single frame and save it as a jpeg",
	Args:  cobra.NoArgs,
	Run:   snap,
}

func init() {
	RootCmd.AddCommand(snapCmd)

	snapCmd.Flags().StringVar(&snapDevice, "device", "", "Camera device: pattern, file, browser or browser-fake")
	snapCmd.Flags().StringVar(&snapDevicePath, "device-path", "", "Image or directory of images for the file device")
	snapCmd.Flags().StringVarP(&snapOut, "out", "o", "", "Output file (default ~/.instavibe/snaps/photo_<millis>.jpg)")
	snapCmd.Flags().Float64Var(&snapQuality, "quality", 0, "JPEG quality between 0 and 1 (default 0.8)")
}

func snap(cmd *cobra.Command, args []string) {
	capture := camera.NewCapture(mustResolveDevice(snapDevice, snapDevicePath))
	defer capture.Close()

	takePhoto(cmd.Context(), capture)

	encoded, err := capture.ToEncodedImage(resolveQuality(snapQuality))
	if err != nil {
		capture.Close()
		term.OutputErrorAndExit("Error encoding photo: %v", err)
	}
	capture.Close()

	out := snapOut
	if out == "" {
		out = filepath.Join(fs.SnapsDir, encoded.Name)
	}

	if err := os.WriteFile(out, encoded.Data, 0644); err != nil {
		term.OutputErrorAndExit("Error writing %s: %v", out, err)
	}

	fmt.Printf("📸 Saved %dx%d photo (%s) to %s\n", encoded.Width, encoded.Height, humanize.Bytes(uint64(len(encoded.Data))), out)
}
