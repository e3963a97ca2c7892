package main

import (
	"video-subtitler/cmd/vsub/cmd"
)

func main() {
	cmd.Execute()
}
