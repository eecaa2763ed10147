package utils

// Set at build time through -ldflags "-X github.com/nameisalii/4wel/common/utils.version=..."
var version = "dev"

func GetVersion() string {
	return version
}
