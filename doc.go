/*
Package trafficcam provides vehicle counting on roadside video.

Frames from a video file or live camera are run through an object
detector, detections are followed across frames by a centroid tracker and
each vehicle is counted once when it first shows confirmed movement.
Vehicles that sit still, such as cars parked at the kerb, are flagged as
parked and excluded from the count.

The root package holds the configuration and monitoring session, the
tracking and counting engine lives in the tracker subpackage, detection in
detect, frame capture in video, persistence in store and frame annotation
in render.
*/
package trafficcam
