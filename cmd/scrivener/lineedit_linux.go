//go:build linux

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

func stdinIsTTY() bool {
	_, err := unix.IoctlGetTermios(int(os.Stdin.Fd()), unix.TCGETS)
	return err == nil
}

// readInteractiveLine reads one line from stdin. On a TTY the terminal
// is put in raw mode so backspace and Ctrl-D behave; otherwise (pipes,
// redirects) a plain buffered read is used. io.EOF is returned when the
// input is exhausted.
func readInteractiveLine(prompt string) (string, error) {
	if !stdinIsTTY() {
		r := bufio.NewReader(os.Stdin)
		s, err := r.ReadString('\n')
		if err == io.EOF && s == "" {
			return "", io.EOF
		}
		if err != nil && err != io.EOF {
			return "", err
		}
		return trimTrailingNewline(s), nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return "", err
	}
	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &newState); err != nil {
		return "", err
	}
	defer func() {
		_ = unix.IoctlSetTermios(fd, unix.TCSETS, oldState)
	}()

	fmt.Print(prompt)
	line := make([]byte, 0, 256)
	var buf [1]byte
	inEscape := false

	for {
		n, err := os.Stdin.Read(buf[:])
		if err != nil {
			if err == io.EOF && len(line) == 0 {
				fmt.Println()
				return "", io.EOF
			}
			if err == io.EOF {
				fmt.Println()
				return string(line), nil
			}
			return "", err
		}
		if n == 0 {
			continue
		}
		b := buf[0]

		if inEscape {
			// Swallow CSI sequences (arrow keys etc.) up to the final byte.
			if b >= 0x40 && b <= 0x7e && b != '[' {
				inEscape = false
			}
			continue
		}

		switch b {
		case '\r', '\n':
			fmt.Println()
			return string(line), nil
		case 0x03: // Ctrl-C
			fmt.Println("^C")
			return "", io.EOF
		case 0x04: // Ctrl-D
			if len(line) == 0 {
				fmt.Println()
				return "", io.EOF
			}
		case 0x7f, 0x08: // Backspace
			if len(line) > 0 {
				line = line[:len(line)-1]
				fmt.Print("\b \b")
			}
		case 0x1b: // ESC
			inEscape = true
		default:
			if b >= 0x20 {
				line = append(line, b)
				fmt.Print(string(b))
			}
		}
	}
}

func trimTrailingNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '\r' {
		s = s[:len(s)-1]
	}
	return s
}
