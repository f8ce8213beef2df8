// Package commands connects the CLI to the engines. Dispatch builds the
// link store and layout for the selected image and runs one command.
package commands
