package places

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var procMountsPath = "/proc/mounts"

// Pseudo filesystems that are never worth browsing.
var ignoredFSTypes = map[string]bool{
	"proc": true, "sysfs": true, "devtmpfs": true, "devpts": true, "tmpfs": true,
	"securityfs": true, "cgroup": true, "cgroup2": true, "pstore": true, "bpf": true,
	"efivarfs": true, "debugfs": true, "hugetlbfs": true, "mqueue": true,
}

// Mounts lists mount points from /proc/mounts without pseudo filesystems.
// Each place is named after its device.
func Mounts() ([]Place, error) {
	f, err := osOpen(procMountsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read mounts: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return parseMounts(f)
}

func parseMounts(r io.Reader) ([]Place, error) {
	var places []Place
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || ignoredFSTypes[fields[2]] {
			continue
		}
		dest := unescapeMountField(fields[1])
		if seen[dest] {
			continue
		}
		seen[dest] = true
		places = append(places, Place{Name: unescapeMountField(fields[0]), Path: dest})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse mounts: %w", err)
	}
	return places, nil
}

// unescapeMountField decodes the octal escapes (\040 for space) used in /proc/mounts.
func unescapeMountField(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				sb.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
