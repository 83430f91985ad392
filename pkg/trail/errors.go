package trail

import "errors"

var (
	errTrailingBytes = errors.New("trail: trailing bytes after expected frames")
	errNoSigner      = errors.New("trail: metadata has no signer")
	errEmptyTxBatch  = errors.New("trail: write_block requires at least one transaction")
)
