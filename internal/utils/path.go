// utils/path.go - Path handling utilities
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

var (
	AppRootDir = "./.leverage"
	LogsDir    = "./.leverage/logs"
	DataDir    = "./.leverage/data"
)

// GetRootDir gets cross-platform root directory
// Returns paths like Windows: %USERPROFILE%/.leverage, Linux/macOS: ~/.leverage
func GetRootDir(appName string) (string, error) {
	var rootDir string

	switch runtime.GOOS {
	case "windows":
		if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
			rootDir = filepath.Join(userProfile, "."+appName)
		} else if appData := os.Getenv("APPDATA"); appData != "" {
			rootDir = filepath.Join(appData, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			rootDir = filepath.Join(homeDir, "."+appName)
		}
	default:
		// XDG_CONFIG_HOME 优先，未设置时使用 ~/.appname
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			rootDir = filepath.Join(xdgConfig, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			rootDir = filepath.Join(homeDir, "."+appName)
		}
	}

	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return "", err
	}

	AppRootDir = rootDir

	return rootDir, nil
}

// GetLogDir gets log directory
func GetLogDir(rootPath string) (string, error) {
	logPath, err := ensureSubDir(rootPath, "logs")
	if err != nil {
		return "", err
	}
	LogsDir = logPath
	return logPath, nil
}

// GetDataDir gets the entity store directory
func GetDataDir(rootPath string) (string, error) {
	dataPath, err := ensureSubDir(rootPath, "data")
	if err != nil {
		return "", err
	}
	DataDir = dataPath
	return dataPath, nil
}

func ensureSubDir(rootPath, name string) (string, error) {
	if _, err := os.Stat(rootPath); os.IsNotExist(err) {
		return "", fmt.Errorf("root path %s does not exist", rootPath)
	}

	subPath := filepath.Join(rootPath, name)
	if err := os.MkdirAll(subPath, 0755); err != nil {
		return "", err
	}
	return subPath, nil
}
