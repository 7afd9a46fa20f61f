package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"instavibe/api"
	"instavibe/camera"
	"instavibe/lib"
	"instavibe/shared"
	"instavibe/term"
	"instavibe/ui"

	"github.com/fatih/color"
	"github.com/gen2brain/beeep"
	"github.com/spf13/cobra"
)

const slowUploadWarningAfter = 5 * time.Second

var postUsername string
var postCaption string
var postPhoto string
var postDevice string
var postDevicePath string
var postQuality float64
var postTextOnly bool
var postNotify bool
var postOpen bool

var postCmd = &cobra.Command{
	Use:     "post",
	Aliases: []string{"p"},
	Short:   "Take a photo and post it with a caption",
	Long: `Take a photo and post it with a caption.

Without --username or --caption you are prompted for them. --photo posts an
image file instead of using the camera.`,
	Args: cobra.NoArgs,
	Run:  createPost,
}

func init() {
	RootCmd.AddCommand(postCmd)

	postCmd.Flags().StringVarP(&postUsername, "username", "u", "", "Username to post as")
	postCmd.Flags().StringVarP(&postCaption, "caption", "c", "", "Caption for the post")
	postCmd.Flags().StringVar(&postPhoto, "photo", "", "Post this image file instead of using the camera")
	postCmd.Flags().StringVar(&postDevice, "device", "", "Camera device: pattern, file, browser or browser-fake")
	postCmd.Flags().StringVar(&postDevicePath, "device-path", "", "Image or directory of images for the file device")
	postCmd.Flags().Float64Var(&postQuality, "quality", 0, "JPEG quality between 0 and 1 (default 0.8)")
	postCmd.Flags().BoolVar(&postTextOnly, "text-only", false, "Post without a photo (legacy json upload)")
	postCmd.Flags().BoolVar(&postNotify, "notify", false, "Show a desktop notification when the post is up")
	postCmd.Flags().BoolVar(&postOpen, "open", false, "Open the posted image in your browser")

	postCmd.MarkFlagsMutuallyExclusive("photo", "device")
	postCmd.MarkFlagsMutuallyExclusive("photo", "text-only")
}

func createPost(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	username := postUsername
	caption := postCaption
	if isInteractive() {
		var err error
		if username == "" {
			username, err = term.GetRequiredUserStringInput("Username:", lib.MsgEnterUsername)
			if err != nil {
				term.OutputErrorAndExit("Error getting username: %v", err)
			}
		}
		if caption == "" {
			caption, err = term.GetRequiredUserStringInput("Caption:", lib.MsgEnterCaption)
			if err != nil {
				term.OutputErrorAndExit("Error getting caption: %v", err)
			}
		}
	}

	variant := lib.VariantPhoto
	if postTextOnly {
		variant = lib.VariantTextOnly
	}

	var onSuccess func(*shared.CreatePostResponse)
	if postNotify {
		onSuccess = notifyPosted(username, func(title, message string) error {
			return beeep.Notify(title, message, "")
		})
	}

	composer := lib.NewComposer(api.Client, lib.ComposerOptions{
		Variant:   variant,
		Quality:   resolveQuality(postQuality),
		OnSuccess: onSuccess,
	})
	composer.SetUsername(username)
	composer.SetCaption(caption)

	var capture *camera.Capture
	if variant == lib.VariantPhoto {
		var dev camera.Device
		if postPhoto != "" {
			dev = &camera.FileDevice{Path: postPhoto}
		} else {
			dev = mustResolveDevice(postDevice, postDevicePath)
		}

		capture = camera.NewCapture(dev)
		defer capture.Close()

		// fail on missing fields before touching the camera
		if _, ok := shared.TrimmedOrEmpty(username); !ok {
			capture.Close()
			term.OutputErrorAndExit("%s", lib.MsgEnterUsername)
		}
		if _, ok := shared.TrimmedOrEmpty(caption); !ok {
			capture.Close()
			term.OutputErrorAndExit("%s", lib.MsgEnterCaption)
		}

		takePhoto(ctx, capture)
		composer.AttachCapture(capture)
	}

	term.LongSpinnerWithWarning("📤 Posting...", "⏳ "+lib.MsgServerWaking, slowUploadWarningAfter)
	res, err := composer.Submit(ctx)
	term.StopSpinner()

	if err != nil {
		if capture != nil {
			capture.Close()
		}
		var validationErr *lib.ValidationError
		var submitErr *lib.SubmitError
		switch {
		case errors.As(err, &validationErr):
			term.OutputErrorAndExit("%s", validationErr.Msg)
		case errors.As(err, &submitErr):
			if submitErr.ApiErr != nil && submitErr.ApiErr.Msg != "" && submitErr.ApiErr.Msg != submitErr.Msg {
				log.Printf("upload error detail: %s", submitErr.ApiErr.Msg)
			}
			term.OutputErrorAndExit("%s", submitErr.Msg)
		}
		term.OutputErrorAndExit("Error creating post: %v", err)
	}

	fmt.Println("✅ " + composer.SuccessMessage())
	if res.Id != "" {
		fmt.Printf("%s %s\n", color.New(color.Bold).Sprint("id:"), res.Id)
	}
	if res.ImageUrl != "" {
		fmt.Printf("%s %s\n", color.New(color.Bold).Sprint("image:"), res.ImageUrl)
	}
	fmt.Println()
	term.PrintCmds("", "feed")

	if postOpen && res.ImageUrl != "" {
		ui.OpenURL("Opening your photo in the browser.", res.ImageUrl)
	}
}

// notifyPosted names the poster as submitted; the backend doesn't always echo the post back.
func notifyPosted(username string, notify func(title, message string) error) func(*shared.CreatePostResponse) {
	name, _ := shared.TrimmedOrEmpty(username)
	return func(*shared.CreatePostResponse) {
		if err := notify("instavibe", "Your post by "+name+" is live"); err != nil {
			log.Printf("notification failed: %v", err)
		}
	}
}
