package shell

// BashTracer is the bash tracer source. It installs a DEBUG trap that writes
// one trace record per simple command, before the command runs, to the file
// descriptor named by LINEPROF_TRACE_FD or to the file named by
// LINEPROF_TRACE. Commands outside a sourced file (no BASH_SOURCE) are not
// reported.
const BashTracer = `# lineprof bash tracer — auto-generated, do not edit manually
# Source this file before the code to profile, with LINEPROF_TRACE set:
#   LINEPROF_TRACE=/tmp/run.tsv bash -c 'source ~/.config/lineprof/lineprof.tracer.bash; source ./script.sh'

if [[ -n "${LINEPROF_TRACE_FD:-}" ]]; then
  _lineprof_fd=$LINEPROF_TRACE_FD
elif [[ -n "${LINEPROF_TRACE:-}" ]]; then
  exec {_lineprof_fd}>>"$LINEPROF_TRACE"
fi

if [[ -n "${_lineprof_fd:-}" ]]; then
  set -o functrace
  trap '[[ -n "${BASH_SOURCE[0]:-}" ]] && printf "%s\t%s\t%s\n" "${EPOCHREALTIME//[.,]/}" "$LINENO" "${BASH_SOURCE[0]}" >&"$_lineprof_fd"' DEBUG
fi
`

// bashEntry sources the script given as $0 with the remaining arguments, after
// BashTracer has run.
const bashEntry = `
source "$0" "$@"
`
