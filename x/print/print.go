// Package print provides helpers to pretty print objects
package print

import (
	"fmt"
	"io"

	"github.com/effective-security/xpgp/gpg"
	"github.com/ugorji/go/codec"
)

var (
	// jsonEncPPHandle is used to encode json with a human readable pretty printed output,
	// fields are serialized in a canonical order everytime
	jsonEncPPHandle codec.JsonHandle
)

func init() {
	jsonEncPPHandle.BasicHandle.EncodeOptions.Canonical = true
	jsonEncPPHandle.Indent = -1
}

var newLine = []byte("\n")

// JSON prints value to out
func JSON(out io.Writer, value interface{}) {
	var json []byte
	err := codec.NewEncoderBytes(&json, &jsonEncPPHandle).Encode(value)
	if err != nil {
		fmt.Fprintf(out, "ERROR: %v\n", err)
		return
	}

	_, _ = out.Write(json)
	_, _ = out.Write(newLine)
}

// Keys prints the resolved keys
func Keys(w io.Writer, keys []*gpg.Key) {
	for i, key := range keys {
		fmt.Fprintf(w, "[%d]\n", i)
		fmt.Fprintf(w, "  Id: %s\n", key.IDString())
		fmt.Fprintf(w, "  Algorithm: %s\n", key.Algorithm)
		printIf(w, "Encryption", key.CanEncrypt())
		printIf(w, "Signing", key.CanSign())
		printIf(w, "Private", key.HasPrivate())
	}
}

func printIf(w io.Writer, label string, val bool) {
	if val {
		fmt.Fprintf(w, "  %s: true\n", label)
	}
}
