package main

import "fmt"

func completionMain(args []string) {
	shell := "bash"
	if len(args) > 0 && args[0] != "" {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	default:
		log.Fatalf("unsupported shell: %s (use bash or zsh)", shell)
	}
}

const bashCompletion = `
_echo_transcript_completions()
{
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "watch replay sessions features completion -c --enable --disable" -- "$cur") )
        return 0
    fi

    case "$prev" in
        --source)
            COMPREPLY=( $(compgen -W "stdin file command whisperx openai session" -- "$cur") )
            return 0
            ;;
        --file|--config)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    case "${COMP_WORDS[1]}" in
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            ;;
        sessions)
            COMPREPLY=( $(compgen -W "list show -n --sep" -- "$cur") )
            ;;
        replay)
            COMPREPLY=( $(compgen -W "--config --source --command --file --delay --speed --frames --save -c" -- "$cur") )
            ;;
        *)
            COMPREPLY=( $(compgen -W "--config --source --command --file --delay --speed --save --no-alt-screen --exit-on-done -c" -- "$cur") )
            ;;
    esac
}
complete -F _echo_transcript_completions echo-transcript
`

const zshCompletion = `
#compdef echo-transcript
_echo_transcript() {
    local -a subcmds
    subcmds=('watch:animate a live transcript in the terminal' 'replay:print animation frames without a TUI' 'sessions:list or show saved transcripts' 'features:list feature flags' 'completion:print shell completions')
    if (( CURRENT == 2 )); then
        _describe 'command' subcmds
        return
    fi
    case "$words[2]" in
        completion)
            _values 'shell' bash zsh
            ;;
        sessions)
            _values 'action' list show
            ;;
        *)
            _arguments \
                '--config[config file]:file:_files' \
                '--source[transcript source]:kind:(stdin file command whisperx openai session)' \
                '--command[shell command]:command:' \
                '--file[input file]:file:_files' \
                '--delay[reveal delay ms]:ms:' \
                '--speed[playback speed]:speed:' \
                '--save[save transcript]' \
                '--frames[print every frame]' \
                '--no-alt-screen[render inline]' \
                '-c[config override]:key=value:'
            ;;
    esac
}
compdef _echo_transcript echo-transcript
`
