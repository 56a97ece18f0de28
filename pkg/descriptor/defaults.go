package descriptor

// Default returns the built-in descriptor for the graphics project: a Rust
// toolchain plus the windowing, OpenGL/EGL, Wayland and X11 libraries its
// winit/glutin/skia stack loads at runtime. libxkbcommon is listed twice in
// the original shell definition and is kept that way.
func Default() *Descriptor {
	tools := []string{
		"rustc",
		"cargo",
		"rustfmt",
		"clippy",
		"pkg-config",
		"cmake",
		"python3",
		"clang",
	}
	libs := []string{
		"libGL",
		"libglvnd",
		"mesa",
		"libxkbcommon",
		"wayland",
		"xorg.libX11",
		"xorg.libXcursor",
		"xorg.libXi",
		"xorg.libXrandr",
		"fontconfig",
		"freetype",
		"libxkbcommon",
	}

	refs := make([]Reference, 0, len(tools)+len(libs))
	for _, name := range tools {
		refs = append(refs, Reference{Name: name, NoLibs: true})
	}
	for _, name := range libs {
		refs = append(refs, Reference{Name: name})
	}

	return &Descriptor{
		Name:     "hyprui",
		Packages: refs,
		Env: map[string]string{
			"RUST_BACKTRACE": "1",
		},
		ExpectLibs: []string{
			"EGL",
			"GL",
			"wayland-client",
			"xkbcommon",
			"X11",
			"Xcursor",
			"Xi",
			"Xrandr",
			"fontconfig",
			"freetype",
		},
	}
}

// Template renders Default as the YAML written by `devshell init`.
func Template() ([]byte, error) {
	body, err := Default().EncodeYAML()
	if err != nil {
		return nil, err
	}
	header := "# devshell environment descriptor\n" +
		"# Packages without a library directory are skipped when building the\n" +
		"# library search path. Mark tools with `libs: false`.\n"
	return append([]byte(header), body...), nil
}
