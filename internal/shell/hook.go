package shell

import (
	"fmt"

	"projcat/internal/cerrors"
)

const bashHook = `# projcat shell integration
pj() {
    local dest
    dest=$(projcat jump "$@") || return
    cd "$dest" || return
}

__projcat_visit() {
    projcat visit "$PWD" >/dev/null 2>&1
}

if [[ ";$PROMPT_COMMAND;" != *";__projcat_visit;"* ]]; then
    PROMPT_COMMAND="__projcat_visit;$PROMPT_COMMAND"
fi
`

const zshHook = `# projcat shell integration
pj() {
    local dest
    dest=$(projcat jump "$@") || return
    cd "$dest" || return
}

__projcat_visit() {
    projcat visit "$PWD" >/dev/null 2>&1
}

autoload -Uz add-zsh-hook
add-zsh-hook chpwd __projcat_visit
`

const fishHook = `# projcat shell integration
function pj
    set -l dest (projcat jump $argv); or return
    cd $dest
end

function __projcat_visit --on-variable PWD
    projcat visit "$PWD" >/dev/null 2>&1
end
`

// HookScript returns the integration snippet for a shell. Users eval it
// from their rc file to get the pj function and automatic visit tracking.
func HookScript(shellName string) (string, error) {
	switch shellName {
	case "bash":
		return bashHook, nil
	case "zsh":
		return zshHook, nil
	case "fish":
		return fishHook, nil
	default:
		return "", cerrors.New(cerrors.ConfigInvalid,
			fmt.Sprintf("unsupported shell %q (expected bash, zsh, or fish)", shellName), nil)
	}
}
