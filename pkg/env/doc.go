package env

/*
Package env turns a declared package set into the environment handed to
child processes.

It handles:
  - Building the ordered variable list (library search path first)
  - Merging those variables over a base process environment for exec.Cmd
  - Generating activation code for bash, zsh, sh and fish
  - Finding specific libraries within the resolved library directories

Basic Usage:

    set, _ := descriptor.Declare(ctx, resolver, d.Packages)
    e := env.New(set, env.Options{Name: d.Name, Static: d.Env})

    cmd := exec.CommandContext(ctx, "cargo", "run")
    cmd.Env = e.Environ(os.Environ())

    script, _ := e.ActivateScript("bash")
    fmt.Print(script) // export LD_LIBRARY_PATH='/nix/store/...-wayland-1.22.0/lib:...'

The environment is a value: nothing here calls os.Setenv, so the variables
only reach the processes they are passed to.

Backend Layouts:

Each backend (apt, brew, nix, etc.) has different directory structures
when packages are extracted. PackageLayout knows about these layouts and
the layout resolver searches the matching locations for each backend type.
*/
