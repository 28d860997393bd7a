//go:build linux

package sysinfo

import "golang.org/x/sys/unix"

// diskPercent returns used space percent for the filesystem at path.
func diskPercent(path string) *float64 {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return nil
	}
	total := st.Blocks * uint64(st.Bsize)
	if total == 0 {
		return nil
	}
	used := (st.Blocks - st.Bfree) * uint64(st.Bsize)
	pct := round1(clampPct(float64(used) / float64(total) * 100.0))
	return &pct
}
