package utils

import (
	"fmt"
	"os"
	"strings"

	bettererrors "github.com/xtuc/better-errors"
	bettererrorstree "github.com/xtuc/better-errors/printer/tree"
)

// chainer is satisfied by error types that wrap a better-errors chain
// behind their own kind.
type chainer interface {
	Chain() *bettererrors.Chain
}

func toChain(err error) (*bettererrors.Chain, bool) {
	if wrapped, ok := err.(chainer); ok {
		return wrapped.Chain(), true
	}

	if bettererrors.IsBetterError(err) {
		return err.(*bettererrors.Chain), true
	}

	return nil, false
}

func FailWith(err error) {
	if chain, ok := toChain(err); ok {

		command := strings.Join(os.Args, " ")

		berror := bettererrors.
			New(command).
			SetContext("version", GetVersion()).
			With(chain)

		msg := bettererrorstree.PrintChain(berror)

		fmt.Println("")
		fmt.Println("❌  An error occurred.")
		fmt.Println("")

		fmt.Print(msg)

		fmt.Println("")

		os.Exit(1)
	} else {
		panic(err)
	}
}

func WarnWith(err error) {
	if chain, ok := toChain(err); ok {
		msg := bettererrorstree.PrintChain(chain)

		fmt.Println("")
		fmt.Println("⚠️  Warning")
		fmt.Println("")

		fmt.Print(msg)

		fmt.Println("")
	} else {
		fmt.Println(err.Error())
	}
}
