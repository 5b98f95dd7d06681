// Mukha morphs faces in the webcam feed toward a target image in real time.
package main

import "github.com/ayusman/mukha/internal/cli"

func main() {
	cli.Execute()
}
