// Package catalog contains the built-in resolver catalog and the
// logic merging it with the user configured servers.
package catalog

import (
	"sort"

	"github.com/dnsarena/probe-cli/internal/model"
)

// builtin is the canonical catalog of well known public resolvers.
var builtin = []model.Target{
	{Name: "Google Primary", Address: "8.8.8.8"},
	{Name: "Google Secondary", Address: "8.8.4.4"},
	{Name: "Cloudflare Primary", Address: "1.1.1.1"},
	{Name: "Cloudflare Secondary", Address: "1.0.0.1"},
	{Name: "Quad9 Primary", Address: "9.9.9.9"},
	{Name: "Quad9 Secondary", Address: "149.112.112.112"},
	{Name: "OpenDNS Primary", Address: "208.67.222.222"},
	{Name: "OpenDNS Secondary", Address: "208.67.220.220"},
	{Name: "Level3", Address: "4.2.2.2"},
	{Name: "Comodo Secure DNS", Address: "8.26.56.26"},
	{Name: "AdGuard DNS", Address: "94.140.14.14"},
	{Name: "CleanBrowsing", Address: "185.228.168.9"},
	{Name: "Alternate DNS", Address: "76.76.19.19"},
	{Name: "NextDNS", Address: "45.90.28.167"},
	{Name: "Norton ConnectSafe", Address: "199.85.126.10"},
}

// Builtin returns a fresh copy of the built-in catalog in its
// canonical order. Callers own the returned slice.
func Builtin() []model.Target {
	return append([]model.Target{}, builtin...)
}

// IsBuiltin tells whether name belongs to the built-in catalog.
func IsBuiltin(name string) bool {
	for _, target := range builtin {
		if target.Name == name {
			return true
		}
	}
	return false
}

// Merge overlays the given custom name to address mapping onto the
// built-in catalog. A custom entry sharing a built-in name replaces
// that entry in place, so the user always wins. Names new to the
// catalog append after the built-in ones, sorted by name so that the
// merged catalog is deterministic regardless of map iteration order.
func Merge(custom map[string]string) []model.Target {
	merged := Builtin()
	var extra []model.Target
	for name, address := range custom {
		if index := indexOf(merged, name); index >= 0 {
			merged[index].Address = address
			continue
		}
		extra = append(extra, model.Target{Name: name, Address: address})
	}
	sort.Slice(extra, func(i, j int) bool {
		return extra[i].Name < extra[j].Name
	})
	return append(merged, extra...)
}

func indexOf(targets []model.Target, name string) int {
	for index, target := range targets {
		if target.Name == name {
			return index
		}
	}
	return -1
}
