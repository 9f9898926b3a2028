// Package version содержит версию движка, которой помечен реплей.
package version

import "fmt"

// Version версия формата реплея: major/minor из заголовка и сетевая версия
type Version struct {
	Major int32
	Minor int32
	Net   int32
}

// New создаёт версию
func New(major, minor, net int32) Version {
	return Version{Major: major, Minor: minor, Net: net}
}

// Compare сравнивает версии лексикографически (major, minor, net)
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmp(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmp(v.Minor, o.Minor)
	default:
		return cmp(v.Net, o.Net)
	}
}

// AtLeast проверяет, что v >= o
func (v Version) AtLeast(o Version) bool {
	return v.Compare(o) >= 0
}

// NetAtLeast проверяет только сетевую версию
func (v Version) NetAtLeast(net int32) bool {
	return v.Net >= net
}

// String возвращает версию в виде "868.32.10"
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Net)
}

func cmp(a, b int32) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
