package config

const configTemplate = `# vidresume configuration file
# Durations use Go syntax (500ms, 3s). Every key can also be set through
# the environment, e.g. VIDRESUME_LOG_LEVEL=debug.

# Browser settings (defaults to the usual Chrome location for the OS)
#browser:
#  path: /usr/bin/google-chrome
#  # Window class used to find the browser's top-level windows
#  window_class: google-chrome
#  # Arguments placed before the URL
#  flags: ["--new-window", "--mute-audio", "--autoplay-policy=no-user-gesture-required"]

grid:
  cell_width: 640
  cell_height: 480

# Where the player sits inside each window
click:
  offset_x: 320
  offset_y: 384

timing:
  settle: 3s      # after the last window is placed
  click_gap: 500ms
  play: 1s        # between the resume and pause passes
  linger: 3s      # before the windows are closed

correlation:
  poll_interval: 250ms
  max_attempts: 40
  timeout: 15s

seek:
  min_position: 1s
  end_margin: 5s
  param: t

# Observability settings
log_level: info  # debug, info, warn, error
# metrics_file: /var/lib/node_exporter/textfile/vidresume.prom
`
