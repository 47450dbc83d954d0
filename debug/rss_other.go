//go:build !windows

package debug

func processRSS() (uint64, error) { return 0, errRSSUnsupported }
