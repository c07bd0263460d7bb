package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/serverops/srvcfg/internal/utils/path"
)

const homeDirectoryFixtureConstant = "/home/operator"

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
	}{
		{name: "bare_tilde", candidatePath: "~", expectedPath: homeDirectoryFixtureConstant},
		{name: "tilde_prefixed_path", candidatePath: "~/configs/servers.yaml", expectedPath: filepath.Join(homeDirectoryFixtureConstant, "configs", "servers.yaml")},
		{name: "absolute_path_unchanged", candidatePath: "/etc/srvcfg/servers.yaml", expectedPath: "/etc/srvcfg/servers.yaml"},
		{name: "relative_path_unchanged", candidatePath: "config/servers.yaml", expectedPath: "config/servers.yaml"},
		{name: "tilde_user_form_unchanged", candidatePath: "~operator/servers.yaml", expectedPath: "~operator/servers.yaml"},
		{name: "empty_path_unchanged", candidatePath: "", expectedPath: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
				return homeDirectoryFixtureConstant, nil
			})
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidatePath))
		})
	}
}

func TestHomeExpanderProviderFailureLeavesPathUnchanged(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("home directory unavailable")
	})
	require.Equal(testInstance, "~/configs/servers.yaml", expander.Expand("~/configs/servers.yaml"))
}

func TestHomeExpanderResolvesProviderOnce(testInstance *testing.T) {
	providerCallCount := 0
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		providerCallCount++
		return homeDirectoryFixtureConstant, nil
	})

	require.Equal(testInstance, homeDirectoryFixtureConstant, expander.Expand("~"))
	require.Equal(testInstance, homeDirectoryFixtureConstant, expander.Expand("~"))
	require.Equal(testInstance, 1, providerCallCount)
}
