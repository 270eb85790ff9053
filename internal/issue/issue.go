// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ToolchainNotFoundId Id = iota + 1
	DistributionUnreachableId
	ExecutableNotFoundId
	LaunchFailedId
	ContainerEngineNotFoundId
	ConfigLoadFailedId
	InvalidProviderOrderId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue page as terminal Markdown using the given glamour
// style ("dark", "light", "notty", or a JSON style path).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	toolchainNotFoundIssue = &Issue{
		id: ToolchainNotFoundId,
		mdMsg: `
# No toolchain found!

None of the configured providers could resolve a toolchain for this project root.

## Things you can try:
- Check that the project root exists and is spelled correctly
- For WSL projects, use the UNC form of the path:
~~~
\\wsl$\Ubuntu\home\me\project
~~~

- Check the provider order in your config file:
~~~
$ toolbridge config show
~~~`,
	}

	distributionUnreachableIssue = &Issue{
		id: DistributionUnreachableId,
		mdMsg: `
# The guest environment is not reachable!

The WSL distribution or container that hosts the toolchain did not answer.

## Things you can try:
- List WSL distributions and their state:
~~~
$ wsl.exe --list --verbose
~~~

- Start the distribution once so its file system is mounted:
~~~
$ wsl.exe --distribution Ubuntu --exec true
~~~

- For containers, check that the container is running:
~~~
$ docker ps
~~~`,
		extLinks: []HttpLink{
			"https://learn.microsoft.com/windows/wsl/basic-commands",
		},
	}

	executableNotFoundIssue = &Issue{
		id: ExecutableNotFoundId,
		mdMsg: `
# Executable not found!

The toolchain location does not contain the requested tool.

## Things you can try:
- Install the component inside the guest:
~~~
$ rustup component add rustfmt clippy
~~~

- Check that ~/.cargo/bin exists in the guest home directory
- Run with --verbose to see the resolved host paths`,
		extLinks: []HttpLink{
			"https://rust-lang.github.io/rustup/concepts/components.html",
		},
	}

	launchFailedIssue = &Issue{
		id: LaunchFailedId,
		mdMsg: `
# Failed to start the process!

The patched command line could not be launched on the host.

## Things you can try:
- Make sure wsl.exe (or the container engine) is in your PATH
- Print the command line that would be executed:
~~~
$ toolbridge patch --root <project> -- cargo build
~~~

- Check the working directory exists on the host`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

A docker:// or podman:// project root needs its engine CLI on the host.

## Things you can try:
- Install Docker: https://docs.docker.com/get-docker/
- Install Podman: https://podman.io/getting-started/installation
- Select the engine explicitly in your config:
~~~cue
container: engine: "podman"
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or did not match the schema.

## Things you can try:
- Show where the config file lives:
~~~
$ toolbridge config path
~~~

- Write a fresh default config:
~~~
$ toolbridge config init --force
~~~`,
	}

	invalidProviderOrderIssue = &Issue{
		id: InvalidProviderOrderId,
		mdMsg: `
# Invalid provider order!

The providers list names an unknown provider or repeats one.

## Valid providers:
- wsl
- container
- local

## Example:
~~~cue
providers: ["wsl", "container", "local"]
~~~

The local provider always applies, so anything listed after it is never consulted.`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

The host refused to run the tool or to enter the guest as the requested user.

## Things you can try:
- Check that the tool file is executable inside the guest:
~~~
$ chmod +x ~/.cargo/bin/cargo
~~~

- For containers, ensure you're in the docker group:
~~~
$ sudo usermod -aG docker $USER
~~~

- Retry without --elevate`,
	}

	issues = map[Id]*Issue{
		toolchainNotFoundIssue.Id():       toolchainNotFoundIssue,
		distributionUnreachableIssue.Id(): distributionUnreachableIssue,
		executableNotFoundIssue.Id():      executableNotFoundIssue,
		launchFailedIssue.Id():            launchFailedIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		invalidProviderOrderIssue.Id():    invalidProviderOrderIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
	}
)

// Values returns every catalog issue, sorted by Id.
func Values() []*Issue {
	all := maps.Values(issues)
	slices.SortFunc(all, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return all
}

func Get(id Id) *Issue {
	return issues[id]
}
